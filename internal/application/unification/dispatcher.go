// Package unification hosts the dispatcher through which every unify and
// desunify call flows. Mappers are never invoked directly by the orchestrator
// or the ingestion layer; that keeps provider-specific logic behind the
// registry and swappable.
package unification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unifyd/backend/internal/domain/unified"
)

// maxNestingDepth bounds nested unification. The unified schema nests at most
// two levels (object -> sub-object); anything deeper is a mapper cycle.
const maxNestingDepth = 4

// UnifyRequest asks for a batch of provider payloads to be unified.
type UnifyRequest struct {
	// Sources are the verbatim provider payloads, order preserved in output
	Sources []json.RawMessage
	// Vertical, ObjectType and Provider select the mapper
	Vertical   unified.Vertical
	ObjectType unified.ObjectType
	Provider   string
	// ConnectionID scopes cross-reference resolution
	ConnectionID uuid.UUID
	// LinkedAccountID scopes field-mapping resolution when FieldMappings is nil
	LinkedAccountID uuid.UUID
	// FieldMappings, when non-nil, are used as-is; when nil they are resolved
	// through the FieldMappingResolver
	FieldMappings []unified.FieldMapping
}

// DesunifyRequest asks for a locally authored unified record to be converted
// into the provider's write shape.
type DesunifyRequest struct {
	Source          unified.Record
	Vertical        unified.Vertical
	Provider        string
	LinkedAccountID uuid.UUID
	FieldMappings   []unified.FieldMapping
}

// CoreUnification resolves mappers through the registry, resolves field
// mappings when the caller did not supply them, and invokes the mapper with a
// bounded-depth nested unifier.
type CoreUnification struct {
	registry      *unified.Registry
	fieldMappings unified.FieldMappingResolver
	logger        *zap.Logger
}

// NewCoreUnification creates the dispatcher
func NewCoreUnification(registry *unified.Registry, fieldMappings unified.FieldMappingResolver, logger *zap.Logger) *CoreUnification {
	return &CoreUnification{
		registry:      registry,
		fieldMappings: fieldMappings,
		logger:        logger.Named("unification"),
	}
}

// Unify converts a batch of provider payloads into unified records. An empty
// batch yields an empty result, not an error.
func (u *CoreUnification) Unify(ctx context.Context, req UnifyRequest) ([]unified.Record, error) {
	return u.unify(ctx, req, 0)
}

func (u *CoreUnification) unify(ctx context.Context, req UnifyRequest, depth int) ([]unified.Record, error) {
	if depth >= maxNestingDepth {
		return nil, fmt.Errorf("%w: depth %d at %s.%s.%s",
			unified.ErrCyclicUnification, depth, req.Vertical, req.ObjectType, req.Provider)
	}

	mapper, err := u.registry.Resolve(req.Vertical, req.ObjectType, req.Provider)
	if err != nil {
		return nil, err
	}

	mappings := req.FieldMappings
	if mappings == nil && u.fieldMappings != nil && req.LinkedAccountID != uuid.Nil {
		mappings, err = u.fieldMappings.GetFieldMappings(ctx, req.Provider, req.LinkedAccountID,
			unified.ObjectKey(req.Vertical, req.ObjectType))
		if err != nil {
			return nil, fmt.Errorf("unification: resolving field mappings for %s.%s.%s: %w",
				req.Vertical, req.ObjectType, req.Provider, err)
		}
	}

	records, err := mapper.Unify(ctx, unified.UnifyParams{
		Sources:       req.Sources,
		ConnectionID:  req.ConnectionID,
		FieldMappings: mappings,
		Nested:        &nestedUnifier{core: u, depth: depth + 1},
	})
	if err != nil {
		return nil, err
	}

	if len(records) != len(req.Sources) {
		u.logger.Warn("Mapper changed batch size",
			zap.String("key", unified.MapperKey{Vertical: req.Vertical, ObjectType: req.ObjectType, Provider: req.Provider}.String()),
			zap.Int("sources", len(req.Sources)),
			zap.Int("records", len(records)),
		)
	}
	return records, nil
}

// Desunify converts a unified record into the provider's write shape. It
// propagates unified.ErrDesunifyUnsupported unchanged so callers can detect
// providers that cannot create the object type.
func (u *CoreUnification) Desunify(ctx context.Context, req DesunifyRequest) (map[string]any, error) {
	if req.Source == nil {
		return nil, fmt.Errorf("unification: desunify source is nil")
	}

	mapper, err := u.registry.Resolve(req.Vertical, req.Source.Type(), req.Provider)
	if err != nil {
		return nil, err
	}

	mappings := req.FieldMappings
	if mappings == nil && u.fieldMappings != nil && req.LinkedAccountID != uuid.Nil {
		mappings, err = u.fieldMappings.GetFieldMappings(ctx, req.Provider, req.LinkedAccountID,
			unified.ObjectKey(req.Vertical, req.Source.Type()))
		if err != nil {
			return nil, fmt.Errorf("unification: resolving field mappings for %s.%s.%s: %w",
				req.Vertical, req.Source.Type(), req.Provider, err)
		}
	}

	return mapper.Desunify(ctx, unified.DesunifyParams{
		Source:        req.Source,
		FieldMappings: mappings,
	})
}

// nestedUnifier hands mappers a depth-counting re-entry point into the
// dispatcher for sub-object unification.
type nestedUnifier struct {
	core  *CoreUnification
	depth int
}

// Unify implements unified.NestedUnifier
func (n *nestedUnifier) Unify(ctx context.Context, req unified.NestedUnifyRequest) ([]unified.Record, error) {
	return n.core.unify(ctx, UnifyRequest{
		Sources:       req.Sources,
		Vertical:      req.Vertical,
		ObjectType:    req.ObjectType,
		Provider:      req.Provider,
		ConnectionID:  req.ConnectionID,
		FieldMappings: req.FieldMappings,
	}, n.depth)
}

var _ unified.NestedUnifier = (*nestedUnifier)(nil)
