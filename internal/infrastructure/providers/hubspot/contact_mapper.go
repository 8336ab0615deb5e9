// Package hubspot adapts the HubSpot CRM v3 API to the unified crm vertical:
// mappers for contacts and owners plus the fetch services that pull them.
package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/unifyd/backend/internal/domain/unified"
)

// Slug is the provider identifier used in mapper keys and connections
const Slug = "hubspot"

// HubSpot property names the contact mapper reads and writes
const (
	propFirstName = "firstname"
	propLastName  = "lastname"
	propEmail     = "email"
	propPhone     = "phone"
	propMobile    = "mobilephone"
	propOwnerID   = "hubspot_owner_id"
	propAddress   = "address"
	propCity      = "city"
	propState     = "state"
	propZip       = "zip"
	propCountry   = "country"
)

// ContactMapper converts HubSpot contacts to unified contacts and back.
type ContactMapper struct {
	resolver unified.RemoteIDResolver
	logger   *zap.Logger
}

// RegisterContactMapper creates the mapper and registers it for
// crm.contact.hubspot
func RegisterContactMapper(reg *unified.Registry, resolver unified.RemoteIDResolver, logger *zap.Logger) *ContactMapper {
	m := &ContactMapper{
		resolver: resolver,
		logger:   logger.Named("hubspot.contact"),
	}
	reg.Register(unified.MapperKey{
		Vertical:   unified.VerticalCRM,
		ObjectType: unified.ObjectTypeContact,
		Provider:   Slug,
	}, m)
	return m
}

// Unify implements unified.Mapper
func (m *ContactMapper) Unify(ctx context.Context, p unified.UnifyParams) ([]unified.Record, error) {
	records := make([]unified.Record, 0, len(p.Sources))
	for _, source := range p.Sources {
		var raw HubSpotContact
		if err := json.Unmarshal(source, &raw); err != nil {
			return nil, fmt.Errorf("hubspot: parsing contact: %w", err)
		}
		props := raw.Properties

		contact := &unified.Contact{
			RemoteID:  raw.ID,
			FirstName: props[propFirstName],
			LastName:  props[propLastName],
		}

		if email := props[propEmail]; email != "" {
			contact.EmailAddresses = append(contact.EmailAddresses, unified.EmailAddress{
				Email: email,
				Type:  "PERSONAL",
			})
		}
		if phone := props[propPhone]; phone != "" {
			contact.PhoneNumbers = append(contact.PhoneNumbers, unified.PhoneNumber{
				Number: phone,
				Type:   "WORK",
			})
		}
		if mobile := props[propMobile]; mobile != "" {
			contact.PhoneNumbers = append(contact.PhoneNumbers, unified.PhoneNumber{
				Number: mobile,
				Type:   "MOBILE",
			})
		}
		if addr := unifyAddress(props); addr != nil {
			contact.Addresses = append(contact.Addresses, *addr)
		}

		if ownerID := props[propOwnerID]; ownerID != "" {
			localID, found, err := m.resolver.ResolveLocalID(ctx, ownerID, p.ConnectionID, unified.ObjectTypeUser)
			if err != nil {
				return nil, fmt.Errorf("hubspot: resolving owner %q: %w", ownerID, err)
			}
			if found {
				contact.UserID = &localID
			} else {
				m.logger.Debug("Dropping unresolved owner",
					zap.String("contact_id", raw.ID),
					zap.String("owner_id", ownerID),
				)
			}
		}

		if fields := pickCustomFields(props, p.FieldMappings); len(fields) > 0 {
			contact.FieldMappings = fields
		}

		records = append(records, contact)
	}
	return records, nil
}

// Desunify implements unified.Mapper. The write shape is the v3 properties
// envelope; only the first email, phone and address survive because HubSpot
// keeps one value per property.
func (m *ContactMapper) Desunify(ctx context.Context, p unified.DesunifyParams) (map[string]any, error) {
	contact, ok := p.Source.(*unified.Contact)
	if !ok {
		return nil, fmt.Errorf("hubspot: desunify expects a contact, got %T", p.Source)
	}

	props := map[string]any{
		propFirstName: contact.FirstName,
		propLastName:  contact.LastName,
	}
	if len(contact.EmailAddresses) > 0 {
		props[propEmail] = contact.EmailAddresses[0].Email
	}
	if len(contact.PhoneNumbers) > 0 {
		props[propPhone] = contact.PhoneNumbers[0].Number
	}
	if len(contact.Addresses) > 0 {
		addr := contact.Addresses[0]
		street := addr.Street1
		if addr.Street2 != "" {
			street = strings.TrimSpace(street + " " + addr.Street2)
		}
		props[propAddress] = street
		props[propCity] = addr.City
		props[propState] = addr.State
		props[propZip] = addr.PostalCode
		props[propCountry] = addr.Country
	}

	for _, mapping := range p.FieldMappings {
		if value, ok := contact.CustomFields()[mapping.Slug]; ok {
			props[mapping.RemoteFieldID] = value
		}
	}

	return map[string]any{"properties": props}, nil
}

// unifyAddress assembles the flat HubSpot address properties into one
// sub-entity, nil when every part is empty
func unifyAddress(props map[string]string) *unified.Address {
	addr := unified.Address{
		Street1:    props[propAddress],
		City:       props[propCity],
		State:      props[propState],
		PostalCode: props[propZip],
		Country:    props[propCountry],
		Type:       "PRIMARY",
	}
	if addr.Street1 == "" && addr.City == "" && addr.State == "" && addr.PostalCode == "" && addr.Country == "" {
		return nil
	}
	return &addr
}

// pickCustomFields reads the mapped properties into a slug-keyed map
func pickCustomFields(props map[string]string, mappings []unified.FieldMapping) map[string]any {
	if len(props) == 0 || len(mappings) == 0 {
		return nil
	}
	out := make(map[string]any)
	for _, mapping := range mappings {
		if value, ok := props[mapping.RemoteFieldID]; ok {
			out[mapping.Slug] = value
		}
	}
	return out
}

var _ unified.Mapper = (*ContactMapper)(nil)

// ---------------------------------------------------------------------------
// Owner mapper
// ---------------------------------------------------------------------------

// OwnerMapper converts HubSpot owners to unified users so contact owner
// references resolve locally. Owners are managed in HubSpot, so desunify is
// unsupported.
type OwnerMapper struct{}

// RegisterOwnerMapper creates the mapper and registers it for
// crm.user.hubspot
func RegisterOwnerMapper(reg *unified.Registry) *OwnerMapper {
	m := &OwnerMapper{}
	reg.Register(unified.MapperKey{
		Vertical:   unified.VerticalCRM,
		ObjectType: unified.ObjectTypeUser,
		Provider:   Slug,
	}, m)
	return m
}

// Unify implements unified.Mapper
func (m *OwnerMapper) Unify(ctx context.Context, p unified.UnifyParams) ([]unified.Record, error) {
	records := make([]unified.Record, 0, len(p.Sources))
	for _, source := range p.Sources {
		var owner HubSpotOwner
		if err := json.Unmarshal(source, &owner); err != nil {
			return nil, fmt.Errorf("hubspot: parsing owner: %w", err)
		}
		records = append(records, &unified.User{
			RemoteID: owner.ID,
			Name:     strings.TrimSpace(owner.FirstName + " " + owner.LastName),
			Email:    owner.Email,
		})
	}
	return records, nil
}

// Desunify implements unified.Mapper
func (m *OwnerMapper) Desunify(ctx context.Context, p unified.DesunifyParams) (map[string]any, error) {
	return nil, unified.ErrDesunifyUnsupported
}

var _ unified.Mapper = (*OwnerMapper)(nil)
