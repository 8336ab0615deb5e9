package front

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unifyd/backend/internal/domain/unified"
)

// tagUnifier routes nested requests straight to the tag mapper
type tagUnifier struct {
	mapper *TagMapper
}

func (u *tagUnifier) Unify(ctx context.Context, req unified.NestedUnifyRequest) ([]unified.Record, error) {
	return u.mapper.Unify(ctx, unified.UnifyParams{
		Sources:      req.Sources,
		ConnectionID: req.ConnectionID,
	})
}

type stubResolver struct {
	ids map[string]uuid.UUID
}

func (r *stubResolver) ResolveLocalID(ctx context.Context, remoteID string, connectionID uuid.UUID, objectType unified.ObjectType) (uuid.UUID, bool, error) {
	id, ok := r.ids[remoteID]
	return id, ok, nil
}

func newTicketMapper(t *testing.T, resolver unified.RemoteIDResolver) *TicketMapper {
	t.Helper()
	reg := unified.NewRegistry()
	if resolver == nil {
		resolver = &stubResolver{}
	}
	return RegisterTicketMapper(reg, resolver, zap.NewNop())
}

func TestTicketMapper_Unify(t *testing.T) {
	ctx := context.Background()

	t.Run("converts a conversation with tags and assignee", func(t *testing.T) {
		agentID := uuid.New()
		resolver := &stubResolver{ids: map[string]uuid.UUID{"tea_1": agentID}}
		mapper := newTicketMapper(t, resolver)

		source := json.RawMessage(`{
			"id": "cnv_55c8c149",
			"subject": "Printer is on fire",
			"status": "open",
			"assignee": {"id": "tea_1", "email": "leela@planet.express"},
			"tags": [
				{"id": "tag_1", "name": "urgent"},
				{"id": "tag_2", "name": "hardware"}
			]
		}`)

		records, err := mapper.Unify(ctx, unified.UnifyParams{
			Sources:      []json.RawMessage{source},
			ConnectionID: uuid.New(),
			Nested:       &tagUnifier{mapper: &TagMapper{}},
		})
		require.NoError(t, err)
		require.Len(t, records, 1)

		ticket, ok := records[0].(*unified.Ticket)
		require.True(t, ok)
		assert.Equal(t, "cnv_55c8c149", ticket.RemoteID)
		assert.Equal(t, "Printer is on fire", ticket.Name)
		assert.Equal(t, "OPEN", ticket.Status)
		assert.Equal(t, []uuid.UUID{agentID}, ticket.AssignedTo)
		require.Len(t, ticket.Tags, 2)
		assert.Equal(t, "tag_1", ticket.Tags[0].RemoteID)
		assert.Equal(t, "urgent", ticket.Tags[0].Name)
		assert.Equal(t, "hardware", ticket.Tags[1].Name)
	})

	t.Run("archived and deleted map to closed", func(t *testing.T) {
		mapper := newTicketMapper(t, nil)

		for _, status := range []string{"archived", "deleted"} {
			records, err := mapper.Unify(ctx, unified.UnifyParams{
				Sources: []json.RawMessage{json.RawMessage(`{"id":"cnv_1","status":"` + status + `"}`)},
			})
			require.NoError(t, err)
			assert.Equal(t, "CLOSED", records[0].(*unified.Ticket).Status)
		}
	})

	t.Run("unresolved assignee is dropped, ticket survives", func(t *testing.T) {
		mapper := newTicketMapper(t, &stubResolver{})

		records, err := mapper.Unify(ctx, unified.UnifyParams{
			Sources: []json.RawMessage{json.RawMessage(`{
				"id": "cnv_2",
				"subject": "Orphaned",
				"status": "open",
				"assignee": {"id": "tea_unknown"}
			}`)},
		})
		require.NoError(t, err)
		ticket := records[0].(*unified.Ticket)
		assert.Empty(t, ticket.AssignedTo)
		assert.Equal(t, "cnv_2", ticket.RemoteID)
	})

	t.Run("reads mapped custom fields by remote id", func(t *testing.T) {
		mapper := newTicketMapper(t, nil)

		records, err := mapper.Unify(ctx, unified.UnifyParams{
			Sources: []json.RawMessage{json.RawMessage(`{
				"id": "cnv_3",
				"status": "open",
				"custom_fields": {"cf_sev": "P1", "cf_ignored": "x"}
			}`)},
			FieldMappings: []unified.FieldMapping{{Slug: "severity", RemoteFieldID: "cf_sev"}},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"severity": "P1"}, records[0].CustomFields())
	})

	t.Run("preserves batch order", func(t *testing.T) {
		mapper := newTicketMapper(t, nil)

		records, err := mapper.Unify(ctx, unified.UnifyParams{
			Sources: []json.RawMessage{
				json.RawMessage(`{"id":"cnv_a","status":"open"}`),
				json.RawMessage(`{"id":"cnv_b","status":"open"}`),
				json.RawMessage(`{"id":"cnv_c","status":"open"}`),
			},
		})
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "cnv_a", records[0].OriginID())
		assert.Equal(t, "cnv_b", records[1].OriginID())
		assert.Equal(t, "cnv_c", records[2].OriginID())
	})

	t.Run("malformed payload fails the batch", func(t *testing.T) {
		mapper := newTicketMapper(t, nil)

		_, err := mapper.Unify(ctx, unified.UnifyParams{
			Sources: []json.RawMessage{json.RawMessage(`{"id":`)},
		})
		assert.Error(t, err)
	})
}

func TestTicketMapper_Desunify(t *testing.T) {
	ctx := context.Background()
	mapper := newTicketMapper(t, nil)

	t.Run("builds the discussion write shape", func(t *testing.T) {
		out, err := mapper.Desunify(ctx, unified.DesunifyParams{
			Source: &unified.Ticket{
				Name:        "New escalation",
				Description: "Customer cannot log in",
				FieldMappings: map[string]any{
					"severity": "P2",
				},
			},
			FieldMappings: []unified.FieldMapping{{Slug: "severity", RemoteFieldID: "cf_sev"}},
		})
		require.NoError(t, err)

		assert.Equal(t, "discussion", out["type"])
		assert.Equal(t, "New escalation", out["subject"])
		assert.Equal(t, map[string]any{"body": "Customer cannot log in"}, out["comment"])
		assert.Equal(t, map[string]any{"cf_sev": "P2"}, out["custom_fields"])
	})

	t.Run("rejects non-ticket records", func(t *testing.T) {
		_, err := mapper.Desunify(ctx, unified.DesunifyParams{
			Source: &unified.Tag{Name: "vip"},
		})
		assert.Error(t, err)
	})
}

func TestTagMapper_Desunify(t *testing.T) {
	mapper := &TagMapper{}
	_, err := mapper.Desunify(context.Background(), unified.DesunifyParams{Source: &unified.Tag{Name: "vip"}})
	assert.ErrorIs(t, err, unified.ErrDesunifyUnsupported)
}

func TestTeammateMapper_Unify(t *testing.T) {
	mapper := &TeammateMapper{}

	records, err := mapper.Unify(context.Background(), unified.UnifyParams{
		Sources: []json.RawMessage{json.RawMessage(`{
			"id": "tea_1",
			"email": "leela@planet.express",
			"username": "leela",
			"first_name": "Turanga",
			"last_name": "Leela"
		}`)},
	})
	require.NoError(t, err)

	user := records[0].(*unified.User)
	assert.Equal(t, "tea_1", user.RemoteID)
	assert.Equal(t, "Turanga Leela", user.Name)
	assert.Equal(t, "leela@planet.express", user.Email)
}
