package front

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/unifyd/backend/internal/domain/unified"
)

// TeammateMapper converts Front teammates to unified users. Teammates are
// managed in Front itself, so desunify is unsupported.
type TeammateMapper struct{}

// RegisterTeammateMapper creates the mapper and registers it for
// ticketing.user.front
func RegisterTeammateMapper(reg *unified.Registry) *TeammateMapper {
	m := &TeammateMapper{}
	reg.Register(unified.MapperKey{
		Vertical:   unified.VerticalTicketing,
		ObjectType: unified.ObjectTypeUser,
		Provider:   Slug,
	}, m)
	return m
}

// Unify implements unified.Mapper
func (m *TeammateMapper) Unify(ctx context.Context, p unified.UnifyParams) ([]unified.Record, error) {
	records := make([]unified.Record, 0, len(p.Sources))
	for _, source := range p.Sources {
		var teammate FrontTeammate
		if err := json.Unmarshal(source, &teammate); err != nil {
			return nil, fmt.Errorf("front: parsing teammate: %w", err)
		}

		name := strings.TrimSpace(teammate.FirstName + " " + teammate.LastName)
		if name == "" {
			name = teammate.Username
		}
		records = append(records, &unified.User{
			RemoteID: teammate.ID,
			Name:     name,
			Email:    teammate.Email,
		})
	}
	return records, nil
}

// Desunify implements unified.Mapper
func (m *TeammateMapper) Desunify(ctx context.Context, p unified.DesunifyParams) (map[string]any, error) {
	return nil, unified.ErrDesunifyUnsupported
}

var _ unified.Mapper = (*TeammateMapper)(nil)
