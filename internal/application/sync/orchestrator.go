// Package sync walks the tenant directory and drives the fetch, unify,
// persist cycle for every syncable connection.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unifyd/backend/internal/application/unification"
	"github.com/unifyd/backend/internal/domain/unified"
)

// Target names one (vertical, object type) to sync and the providers that
// serve it. Every is the scheduling interval; the orchestrator itself does not
// schedule, it runs when called.
type Target struct {
	Vertical   unified.Vertical
	ObjectType unified.ObjectType
	Providers  []string
	Every      time.Duration
}

// Unifier converts provider payloads into unified records
type Unifier interface {
	Unify(ctx context.Context, req unification.UnifyRequest) ([]unified.Record, error)
}

// Ingestor persists unified records for a connection
type Ingestor interface {
	Persist(ctx context.Context, connectionID uuid.UUID, records []unified.Record, raws []json.RawMessage) ([]uuid.UUID, error)
}

// RunSummary reports the outcome of one orchestrator run.
type RunSummary struct {
	// Connections is the number of connections considered
	Connections int
	// Succeeded completed a full fetch-unify-persist cycle
	Succeeded int
	// Skipped had no connection for the provider, a non-syncable status, or a
	// provider without a fetch service for the object type
	Skipped int
	// Failed errored mid-cycle; failures never abort sibling connections
	Failed int
	// Records is the total number of records persisted
	Records int
}

func (s *RunSummary) add(other RunSummary) {
	s.Connections += other.Connections
	s.Succeeded += other.Succeeded
	s.Skipped += other.Skipped
	s.Failed += other.Failed
	s.Records += other.Records
}

// Orchestrator traverses tenant, project, linked account, connection and syncs
// each eligible connection with bounded concurrency.
type Orchestrator struct {
	tenants        unified.TenantRepository
	projects       unified.ProjectRepository
	linkedAccounts unified.LinkedAccountRepository
	connections    unified.ConnectionRepository
	fieldMappings  unified.FieldMappingResolver
	services       *unified.ServiceRegistry
	unifier        Unifier
	ingestor       Ingestor
	maxConcurrent  int
	logger         *zap.Logger
}

// NewOrchestrator creates the orchestrator. maxConcurrent bounds the number of
// connections synced in parallel; values below 1 are raised to 1.
func NewOrchestrator(
	tenants unified.TenantRepository,
	projects unified.ProjectRepository,
	linkedAccounts unified.LinkedAccountRepository,
	connections unified.ConnectionRepository,
	fieldMappings unified.FieldMappingResolver,
	services *unified.ServiceRegistry,
	unifier Unifier,
	ingestor Ingestor,
	maxConcurrent int,
	logger *zap.Logger,
) *Orchestrator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		tenants:        tenants,
		projects:       projects,
		linkedAccounts: linkedAccounts,
		connections:    connections,
		fieldMappings:  fieldMappings,
		services:       services,
		unifier:        unifier,
		ingestor:       ingestor,
		maxConcurrent:  maxConcurrent,
		logger:         logger.Named("sync"),
	}
}

// SyncAll runs the target for every active tenant. Tenant failures are
// isolated; the summary aggregates across all of them.
func (o *Orchestrator) SyncAll(ctx context.Context, target Target) (RunSummary, error) {
	var summary RunSummary

	tenants, err := o.tenants.FindAllActive(ctx)
	if err != nil {
		return summary, err
	}

	for _, tenant := range tenants {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		tenantSummary, err := o.SyncTenant(ctx, tenant.ID, target)
		summary.add(tenantSummary)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			o.logger.Error("Tenant sync failed",
				zap.String("tenant_id", tenant.ID.String()),
				zap.Error(err),
			)
		}
	}
	return summary, nil
}

// SyncTenant runs the target for one tenant. Connections fan out under the
// concurrency bound; each failure is counted and logged without affecting the
// others.
func (o *Orchestrator) SyncTenant(ctx context.Context, tenantID uuid.UUID, target Target) (RunSummary, error) {
	projects, err := o.projects.FindByTenant(ctx, tenantID)
	if err != nil {
		return RunSummary{}, err
	}

	var (
		mu      sync.Mutex
		summary RunSummary
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, o.maxConcurrent)

	for _, project := range projects {
		accounts, err := o.linkedAccounts.FindByProject(ctx, project.ID)
		if err != nil {
			wg.Wait()
			return summary, err
		}
		for _, account := range accounts {
			for _, provider := range target.Providers {
				if ctx.Err() != nil {
					wg.Wait()
					return summary, ctx.Err()
				}

				wg.Add(1)
				sem <- struct{}{}
				go func(account unified.LinkedAccount, provider string) {
					defer wg.Done()
					defer func() { <-sem }()

					outcome := o.syncConnection(ctx, target, account, provider)
					mu.Lock()
					summary.add(outcome)
					mu.Unlock()
				}(account, provider)
			}
		}
	}

	wg.Wait()
	return summary, nil
}

// syncConnection runs one fetch-unify-persist cycle. The summary it returns
// covers exactly one connection.
func (o *Orchestrator) syncConnection(ctx context.Context, target Target, account unified.LinkedAccount, provider string) RunSummary {
	summary := RunSummary{Connections: 1}
	log := o.logger.With(
		zap.String("linked_account_id", account.ID.String()),
		zap.String("provider", provider),
		zap.String("object", unified.ObjectKey(target.Vertical, target.ObjectType)),
	)

	conn, err := o.connections.FindForLinkedAccount(ctx, account.ID, provider, target.Vertical)
	if errors.Is(err, unified.ErrConnectionNotFound) {
		log.Debug("No connection for provider, skipping")
		summary.Skipped++
		return summary
	}
	if err != nil {
		log.Error("Connection lookup failed", zap.Error(err))
		summary.Failed++
		return summary
	}
	if !conn.CanSync() {
		log.Warn("Connection not syncable, skipping", zap.String("status", conn.Status.String()))
		summary.Skipped++
		return summary
	}

	service, err := o.services.Resolve(target.Vertical, target.ObjectType, provider)
	if err != nil {
		var notFound *unified.NotFoundError
		if errors.As(err, &notFound) {
			log.Warn("Provider has no fetch service for object type, skipping")
			summary.Skipped++
			return summary
		}
		log.Error("Fetch service lookup failed", zap.Error(err))
		summary.Failed++
		return summary
	}

	mappings, err := o.fieldMappings.GetFieldMappings(ctx, provider, account.ID,
		unified.ObjectKey(target.Vertical, target.ObjectType))
	if err != nil {
		log.Error("Field mapping resolution failed", zap.Error(err))
		summary.Failed++
		return summary
	}

	result, err := service.Fetch(ctx, account.ID, unified.RemoteFieldIDs(mappings))
	if err != nil {
		if errors.Is(err, unified.ErrProviderAuthFailed) {
			conn.MarkNeedsReauth()
			if saveErr := o.connections.Save(ctx, conn); saveErr != nil {
				log.Error("Failed to mark connection for re-auth", zap.Error(saveErr))
			}
			log.Warn("Provider rejected credentials, connection needs re-auth")
		} else {
			log.Error("Fetch failed",
				zap.Bool("retryable", unified.IsRetryableFetchError(err)),
				zap.Error(err),
			)
		}
		summary.Failed++
		return summary
	}

	records, err := o.unifier.Unify(ctx, unification.UnifyRequest{
		Sources:         result.Data,
		Vertical:        target.Vertical,
		ObjectType:      target.ObjectType,
		Provider:        provider,
		ConnectionID:    conn.ID,
		LinkedAccountID: account.ID,
		FieldMappings:   mappings,
	})
	if err != nil {
		log.Error("Unification failed", zap.Error(err))
		summary.Failed++
		return summary
	}

	ids, err := o.ingestor.Persist(ctx, conn.ID, records, result.Data)
	summary.Records += len(ids)
	if err != nil {
		log.Error("Persistence failed", zap.Int("persisted", len(ids)), zap.Error(err))
		summary.Failed++
		return summary
	}

	conn.RecordSyncSuccess(time.Now())
	if err := o.connections.Save(ctx, conn); err != nil {
		log.Error("Failed to stamp sync success", zap.Error(err))
		summary.Failed++
		return summary
	}

	log.Info("Connection synced", zap.Int("records", len(ids)))
	summary.Succeeded++
	return summary
}
