// Package unified contains the domain model of the unification engine:
// verticals and object types, the canonical (provider-agnostic) record shapes,
// the mapper capability interface and its registry, tenant directory entities
// (tenant, project, linked account, connection), custom-field mappings with
// their Attribute/Value persistence form, and the ports implemented by the
// infrastructure layer.
//
// Provider-specific code never leaks out of this package's interfaces: the
// dispatcher in application/unification is the only caller of Mapper, and the
// sync orchestrator reaches provider APIs only through FetchService.
package unified
