// Package ingest persists unified records idempotently: core fields through
// per-type writers, custom fields through the attribute/value side table, and
// verbatim provider payloads alongside.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unifyd/backend/internal/domain/unified"
)

// KeyLocker serializes writers racing on the same record key. Unlock is the
// returned closure.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Service routes unified records to the writer for their object type and
// persists the custom-field and raw-payload sidecars.
type Service struct {
	writers     map[unified.ObjectType]unified.RecordWriter
	connections unified.ConnectionRepository
	extensions  unified.ExtensionStore
	rawStore    unified.RawPayloadStore
	locker      KeyLocker
	logger      *zap.Logger
}

// NewService creates the ingestion service. Writers are indexed by the object
// type they persist; registering two writers for one type is a wiring bug.
func NewService(
	writers []unified.RecordWriter,
	connections unified.ConnectionRepository,
	extensions unified.ExtensionStore,
	rawStore unified.RawPayloadStore,
	locker KeyLocker,
	logger *zap.Logger,
) (*Service, error) {
	indexed := make(map[unified.ObjectType]unified.RecordWriter, len(writers))
	for _, w := range writers {
		if _, dup := indexed[w.ObjectType()]; dup {
			return nil, fmt.Errorf("ingest: duplicate writer for object type %q", w.ObjectType())
		}
		indexed[w.ObjectType()] = w
	}
	return &Service{
		writers:     indexed,
		connections: connections,
		extensions:  extensions,
		rawStore:    rawStore,
		locker:      locker,
		logger:      logger.Named("ingest"),
	}, nil
}

// Persist upserts a batch of unified records for one connection. raws, when
// non-nil, is positional with records and stores the verbatim provider payload
// next to each persisted record.
//
// Records are isolated from each other: a failing record is logged and
// skipped, the rest of the batch proceeds. The returned ids are the local ids
// of the records that persisted; the error aggregates the per-record failures.
func (s *Service) Persist(ctx context.Context, connectionID uuid.UUID, records []unified.Record, raws []json.RawMessage) ([]uuid.UUID, error) {
	if len(raws) > 0 && len(raws) != len(records) {
		return nil, fmt.Errorf("ingest: %d raw payloads for %d records", len(raws), len(records))
	}

	conn, err := s.connections.FindByID(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("ingest: loading connection %s: %w", connectionID, err)
	}

	ids := make([]uuid.UUID, 0, len(records))
	var failures []error
	for i, rec := range records {
		var raw json.RawMessage
		if len(raws) > 0 {
			raw = raws[i]
		}
		localID, err := s.persistOne(ctx, conn, rec, raw)
		if err != nil {
			s.logger.Error("Record failed to persist",
				zap.String("connection_id", connectionID.String()),
				zap.String("object_type", rec.Type().String()),
				zap.String("origin_id", rec.OriginID()),
				zap.Error(err),
			)
			failures = append(failures, err)
			continue
		}
		ids = append(ids, localID)
	}
	return ids, errors.Join(failures...)
}

func (s *Service) persistOne(ctx context.Context, conn *unified.Connection, rec unified.Record, raw json.RawMessage) (uuid.UUID, error) {
	if rec.OriginID() == "" {
		return uuid.Nil, unified.ErrMissingOriginID
	}

	writer, ok := s.writers[rec.Type()]
	if !ok {
		return uuid.Nil, fmt.Errorf("ingest: no writer for object type %q", rec.Type())
	}

	unlock, err := s.locker.Lock(ctx, conn.ID.String()+":"+rec.OriginID())
	if err != nil {
		return uuid.Nil, fmt.Errorf("ingest: acquiring record lock: %w", err)
	}
	defer unlock()

	localID, err := writer.Upsert(ctx, conn.ID, rec)
	if errors.Is(err, unified.ErrPersistenceConflict) {
		// The loser of an insert race retries once; the row now exists and the
		// retry takes the update path.
		localID, err = writer.Upsert(ctx, conn.ID, rec)
	}
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.persistCustomFields(ctx, conn, localID, rec.CustomFields()); err != nil {
		return uuid.Nil, err
	}

	if raw != nil {
		if err := s.rawStore.Upsert(ctx, localID, raw); err != nil {
			return uuid.Nil, fmt.Errorf("ingest: storing raw payload: %w", err)
		}
	}
	return localID, nil
}

// persistCustomFields writes one attribute value per slug whose attribute is
// defined for the connection's linked account. Unknown slugs are skipped
// silently; a mapping removed mid-sync must not fail ingestion.
func (s *Service) persistCustomFields(ctx context.Context, conn *unified.Connection, localID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	var entity *unified.Entity
	for slug, value := range fields {
		attr, err := s.extensions.FindAttribute(ctx, slug, conn.ProviderSlug, conn.LinkedAccountID)
		if errors.Is(err, unified.ErrAttributeNotFound) {
			s.logger.Debug("Skipping unmapped custom field",
				zap.String("slug", slug),
				zap.String("provider", conn.ProviderSlug),
			)
			continue
		}
		if err != nil {
			return fmt.Errorf("ingest: resolving attribute %q: %w", slug, err)
		}

		if entity == nil {
			entity, err = s.extensions.CreateEntity(ctx, localID)
			if err != nil {
				return fmt.Errorf("ingest: creating entity for record %s: %w", localID, err)
			}
		}

		data, err := encodeValue(value)
		if err != nil {
			return fmt.Errorf("ingest: encoding custom field %q: %w", slug, err)
		}
		if err := s.extensions.UpsertValue(ctx, attr.ID, entity.ID, data); err != nil {
			return fmt.Errorf("ingest: writing custom field %q: %w", slug, err)
		}
	}
	return nil
}

// encodeValue stores strings as-is and JSON-encodes everything else, so the
// common case round-trips without quoting noise.
func encodeValue(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
