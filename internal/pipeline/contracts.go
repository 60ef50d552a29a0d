package pipeline

// Validatable requests are checked by the validation behavior before the
// handler runs. Implementations typically delegate to ozzo-validation rules.
type Validatable interface {
	Validate() error
}

// Cacheable queries are served through the cache behavior. CacheKey must be
// deterministic for identical inputs; CachePrefixes names the invalidation
// namespaces the key is registered under.
type Cacheable interface {
	CacheKey() string
	CachePrefixes() []string
}

// Transactional commands run inside a database transaction with retry on
// serialization failures.
type Transactional interface {
	RequiresTransaction() bool
}

// Invalidator commands name the cache prefixes to drop after they succeed.
type Invalidator interface {
	InvalidatePrefixes() []string
}

// Audited requests identify their actor for the audit trail. Requests that do
// not implement it are audited as system actions.
type Audited interface {
	AuditActor() (actorType string, actorID string)
}
