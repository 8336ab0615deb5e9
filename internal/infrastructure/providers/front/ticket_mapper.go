// Package front adapts the Front conversation API to the unified ticketing
// vertical: mappers for tickets, tags and teammates plus the fetch services
// that pull them.
package front

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/unifyd/backend/internal/domain/unified"
)

// Slug is the provider identifier used in mapper keys and connections
const Slug = "front"

// Front status values
const (
	statusOpen     = "open"
	statusArchived = "archived"
	statusDeleted  = "deleted"
)

// TicketMapper converts Front conversations to unified tickets and back.
type TicketMapper struct {
	resolver unified.RemoteIDResolver
	logger   *zap.Logger
}

// RegisterTicketMapper creates the mapper and registers it for
// ticketing.ticket.front
func RegisterTicketMapper(reg *unified.Registry, resolver unified.RemoteIDResolver, logger *zap.Logger) *TicketMapper {
	m := &TicketMapper{
		resolver: resolver,
		logger:   logger.Named("front.ticket"),
	}
	reg.Register(unified.MapperKey{
		Vertical:   unified.VerticalTicketing,
		ObjectType: unified.ObjectTypeTicket,
		Provider:   Slug,
	}, m)
	return m
}

// Unify implements unified.Mapper
func (m *TicketMapper) Unify(ctx context.Context, p unified.UnifyParams) ([]unified.Record, error) {
	records := make([]unified.Record, 0, len(p.Sources))
	for _, source := range p.Sources {
		var conv FrontConversation
		if err := json.Unmarshal(source, &conv); err != nil {
			return nil, fmt.Errorf("front: parsing conversation: %w", err)
		}

		ticket := &unified.Ticket{
			RemoteID: conv.ID,
			Name:     conv.Subject,
			Status:   unifyStatus(conv.Status),
		}

		if len(conv.Tags) > 0 {
			tags, err := m.unifyTags(ctx, p, conv.Tags)
			if err != nil {
				return nil, err
			}
			ticket.Tags = tags
		}

		if conv.Assignee != nil {
			localID, found, err := m.resolver.ResolveLocalID(ctx, conv.Assignee.ID, p.ConnectionID, unified.ObjectTypeUser)
			if err != nil {
				return nil, fmt.Errorf("front: resolving assignee %q: %w", conv.Assignee.ID, err)
			}
			if found {
				ticket.AssignedTo = append(ticket.AssignedTo, localID)
			} else {
				m.logger.Debug("Dropping unresolved assignee",
					zap.String("conversation_id", conv.ID),
					zap.String("assignee_id", conv.Assignee.ID),
				)
			}
		}

		if fields := pickCustomFields(conv.CustomFields, p.FieldMappings); len(fields) > 0 {
			ticket.FieldMappings = fields
		}

		records = append(records, ticket)
	}
	return records, nil
}

// unifyTags routes the conversation's tags through the registry so the tag
// mapper stays the single owner of tag conversion.
func (m *TicketMapper) unifyTags(ctx context.Context, p unified.UnifyParams, tags []FrontTag) ([]unified.Tag, error) {
	sources := make([]json.RawMessage, len(tags))
	for i, tag := range tags {
		raw, err := json.Marshal(tag)
		if err != nil {
			return nil, fmt.Errorf("front: encoding tag %q: %w", tag.ID, err)
		}
		sources[i] = raw
	}

	records, err := p.Nested.Unify(ctx, unified.NestedUnifyRequest{
		Sources:      sources,
		Vertical:     unified.VerticalTicketing,
		ObjectType:   unified.ObjectTypeTag,
		Provider:     Slug,
		ConnectionID: p.ConnectionID,
	})
	if err != nil {
		return nil, err
	}

	converted := make([]unified.Tag, 0, len(records))
	for _, rec := range records {
		tag, ok := rec.(*unified.Tag)
		if !ok {
			return nil, fmt.Errorf("front: nested tag unification returned %T", rec)
		}
		converted = append(converted, *tag)
	}
	return converted, nil
}

// Desunify implements unified.Mapper. Front creates conversations through the
// discussion channel, so the write shape wraps the description in a comment.
func (m *TicketMapper) Desunify(ctx context.Context, p unified.DesunifyParams) (map[string]any, error) {
	ticket, ok := p.Source.(*unified.Ticket)
	if !ok {
		return nil, fmt.Errorf("front: desunify expects a ticket, got %T", p.Source)
	}

	out := map[string]any{
		"type":    "discussion",
		"subject": ticket.Name,
	}
	if ticket.Description != "" {
		out["comment"] = map[string]any{"body": ticket.Description}
	}

	if custom := placeCustomFields(ticket.CustomFields(), p.FieldMappings); len(custom) > 0 {
		out["custom_fields"] = custom
	}
	return out, nil
}

// unifyStatus folds Front's three conversation states into the unified pair
func unifyStatus(status string) string {
	switch status {
	case statusOpen:
		return "OPEN"
	case statusArchived, statusDeleted:
		return "CLOSED"
	default:
		return ""
	}
}

// pickCustomFields reads the mapped provider fields into a slug-keyed map.
// Fields absent from the payload produce no entry.
func pickCustomFields(providerFields map[string]any, mappings []unified.FieldMapping) map[string]any {
	if len(providerFields) == 0 || len(mappings) == 0 {
		return nil
	}
	out := make(map[string]any)
	for _, mapping := range mappings {
		if value, ok := providerFields[mapping.RemoteFieldID]; ok {
			out[mapping.Slug] = value
		}
	}
	return out
}

// placeCustomFields writes slug-keyed values back under the provider field ids
func placeCustomFields(fields map[string]any, mappings []unified.FieldMapping) map[string]any {
	if len(fields) == 0 || len(mappings) == 0 {
		return nil
	}
	out := make(map[string]any)
	for _, mapping := range mappings {
		if value, ok := fields[mapping.Slug]; ok {
			out[mapping.RemoteFieldID] = value
		}
	}
	return out
}

var _ unified.Mapper = (*TicketMapper)(nil)
