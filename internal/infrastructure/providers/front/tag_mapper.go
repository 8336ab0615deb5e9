package front

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/unifyd/backend/internal/domain/unified"
)

// TagMapper converts Front tags to unified tags. Front has no standalone tag
// creation API in the unified write path, so desunify is unsupported.
type TagMapper struct{}

// RegisterTagMapper creates the mapper and registers it for
// ticketing.tag.front
func RegisterTagMapper(reg *unified.Registry) *TagMapper {
	m := &TagMapper{}
	reg.Register(unified.MapperKey{
		Vertical:   unified.VerticalTicketing,
		ObjectType: unified.ObjectTypeTag,
		Provider:   Slug,
	}, m)
	return m
}

// Unify implements unified.Mapper
func (m *TagMapper) Unify(ctx context.Context, p unified.UnifyParams) ([]unified.Record, error) {
	records := make([]unified.Record, 0, len(p.Sources))
	for _, source := range p.Sources {
		var tag FrontTag
		if err := json.Unmarshal(source, &tag); err != nil {
			return nil, fmt.Errorf("front: parsing tag: %w", err)
		}
		records = append(records, &unified.Tag{
			RemoteID: tag.ID,
			Name:     tag.Name,
		})
	}
	return records, nil
}

// Desunify implements unified.Mapper
func (m *TagMapper) Desunify(ctx context.Context, p unified.DesunifyParams) (map[string]any, error) {
	return nil, unified.ErrDesunifyUnsupported
}

var _ unified.Mapper = (*TagMapper)(nil)
