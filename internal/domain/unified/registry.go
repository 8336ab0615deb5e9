package unified

import "sync"

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

// Registry is the process-wide mapper table keyed by (vertical, object type,
// provider). Mappers self-register at startup; after that the registry is
// read-only, so lookups take only a read lock. It holds no business logic and
// no persistence: it is rebuilt from scratch by self-registration on every
// process start.
type Registry struct {
	mu      sync.RWMutex
	mappers map[MapperKey]Mapper
}

// NewRegistry creates an empty mapper registry
func NewRegistry() *Registry {
	return &Registry{mappers: make(map[MapperKey]Mapper)}
}

// Register stores the mapper under the composite key. Registering the same
// key twice silently overwrites: last registration wins, which is what test
// overrides rely on.
func (r *Registry) Register(key MapperKey, m Mapper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappers[key] = m
}

// Resolve returns the mapper registered for the triple. Lookup on an
// unregistered key is a hard error carrying all three key components, never
// a silent no-op.
func (r *Registry) Resolve(vertical Vertical, objectType ObjectType, provider string) (Mapper, error) {
	key := MapperKey{Vertical: vertical, ObjectType: objectType, Provider: provider}
	r.mu.RLock()
	m, ok := r.mappers[key]
	r.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Kind: "mapper", Key: key}
	}
	return m, nil
}

// Keys returns all registered keys, for startup diagnostics
func (r *Registry) Keys() []MapperKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]MapperKey, 0, len(r.mappers))
	for k := range r.mappers {
		keys = append(keys, k)
	}
	return keys
}

// ---------------------------------------------------------------------------
// ServiceRegistry
// ---------------------------------------------------------------------------

// ServiceRegistry indexes provider fetch services under the same composite
// key scheme as the mapper registry. The orchestrator resolves the service
// for each connection through it instead of holding provider lists.
type ServiceRegistry struct {
	mu       sync.RWMutex
	services map[MapperKey]FetchService
}

// NewServiceRegistry creates an empty fetch-service registry
func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{services: make(map[MapperKey]FetchService)}
}

// Register stores the fetch service under the composite key, last wins
func (r *ServiceRegistry) Register(key MapperKey, s FetchService) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[key] = s
}

// Resolve returns the fetch service registered for the triple
func (r *ServiceRegistry) Resolve(vertical Vertical, objectType ObjectType, provider string) (FetchService, error) {
	key := MapperKey{Vertical: vertical, ObjectType: objectType, Provider: provider}
	r.mu.RLock()
	s, ok := r.services[key]
	r.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Kind: "fetch service", Key: key}
	}
	return s, nil
}
