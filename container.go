package gaffer

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gaffer-di/gaffer/internal/loadstack"
)

// Container is the service registry and resolution engine. It owns five
// structures with a common lifetime: the definition store, the alias map,
// the type index, the shared-instance cache, and the loading stack used for
// cycle detection. All of them are cleared together by Reset.
//
// A single coarse mutex serializes every exported call; one resolution may
// recurse arbitrarily deep through nested references under that lock, and the
// loading stack is therefore scoped to one top-level resolution at a time.
type Container struct {
	mu sync.Mutex

	id     string
	logger *zap.Logger

	definitions map[string]*Definition
	aliases     map[string]string
	typeIndex   map[string][]string
	tagIndex    map[string][]string
	shared      map[string]any

	loading  *loadstack.Stack
	excluded map[string]bool
	maxDepth int
}

// New creates an empty container.
func New(opts ...Option) *Container {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(options)
	}

	excluded := make(map[string]bool, len(options.excludedTypes))
	for _, t := range options.excludedTypes {
		excluded[t] = true
	}

	return &Container{
		id:          uuid.NewString(),
		logger:      options.logger,
		definitions: make(map[string]*Definition),
		aliases:     make(map[string]string),
		typeIndex:   make(map[string][]string),
		tagIndex:    make(map[string][]string),
		shared:      make(map[string]any),
		loading:     loadstack.New(),
		excluded:    excluded,
		maxDepth:    options.maxDepth,
	}
}

// ID returns the container's unique instance identifier.
func (c *Container) ID() string {
	return c.id
}

// Set registers a definition under id, replacing any previous definition.
// It fails with FrozenError once the identifier's shared value has been
// constructed; Reset lifts that restriction. The definition is returned so
// registration and fluent configuration can be combined.
func (c *Container) Set(id string, def *Definition) (*Definition, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, frozen := c.shared[id]; frozen {
		return nil, FrozenError{ID: id}
	}

	if previous, ok := c.definitions[id]; ok {
		c.unindex(id, previous)
	}

	c.definitions[id] = def
	c.index(id, def)

	c.logger.Debug("definition registered",
		zap.String("container", c.id),
		zap.String("service", id),
		zap.Bool("shared", def.Shared))

	return def, nil
}

// Has reports whether id resolves to anything: a definition, a cached value,
// or a type-index entry, following the alias chain first.
func (c *Container) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if target, ok := c.aliases[id]; ok {
		id = target
	}

	if _, ok := c.definitions[id]; ok {
		return true
	}
	if _, ok := c.shared[id]; ok {
		return true
	}
	return len(c.typeIndex[id]) > 0
}

// Alias registers aliasID as a secondary name for target. Alias chains are
// collapsed at creation time: aliasing an alias stores the final target.
// It fails with InvalidAliasError when the alias would target itself and
// with NotFoundError when the target resolves to nothing.
func (c *Container) Alias(aliasID, target string) error {
	if aliasID == target {
		return InvalidAliasError{ID: aliasID}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if collapsed, ok := c.aliases[target]; ok {
		target = collapsed
	}
	if target == aliasID {
		return InvalidAliasError{ID: aliasID}
	}

	_, hasDef := c.definitions[target]
	if !hasDef && len(c.typeIndex[target]) == 0 {
		return NotFoundError{ID: target, Suggestion: closestID(target, c.knownIDs(false))}
	}

	c.aliases[aliasID] = target
	return nil
}

// ResolveAlias returns the final target of id's alias chain, or id itself
// when it is not an alias. Single hop, O(1).
func (c *Container) ResolveAlias(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if target, ok := c.aliases[id]; ok {
		return target
	}
	return id
}

// Remove evicts the definition registered under id along with its cached
// value and its type-index and tag-index entries. Aliases pointing at id are
// left in place and report not-found when followed.
func (c *Container) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if def, ok := c.definitions[id]; ok {
		c.unindex(id, def)
	}
	delete(c.definitions, id)
	delete(c.shared, id)
}

// Reset returns the container to its empty state. Cached shared instances
// implementing Resettable are notified first, then every structure is
// cleared, including frozen identifiers, which accept a new Set afterwards.
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, instance := range c.shared {
		if r, ok := instance.(Resettable); ok {
			r.ResetService()
		}
	}

	c.shared = make(map[string]any)
	c.loading.Clear()
	c.definitions = make(map[string]*Definition)
	c.typeIndex = make(map[string][]string)
	c.tagIndex = make(map[string][]string)
	c.aliases = make(map[string]string)

	c.logger.Debug("container reset", zap.String("container", c.id))
}

// Typed reports whether any registered definition satisfies typeName.
func (c *Container) Typed(typeName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.typeIndex[typeName]) > 0
}

// TypedIDs returns the identifiers satisfying typeName in registration order.
func (c *Container) TypedIDs(typeName string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := c.typeIndex[typeName]
	result := make([]string, len(ids))
	copy(result, ids)
	return result
}

// Tag attaches tags to an already-registered definition. It fails with
// NotFoundError when id has no definition.
func (c *Container) Tag(id string, tags ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if target, ok := c.aliases[id]; ok {
		id = target
	}

	def, ok := c.definitions[id]
	if !ok {
		return NotFoundError{ID: id, Suggestion: closestID(id, c.knownIDs(false))}
	}

	for _, tag := range tags {
		if !containsString(def.Tags, tag) {
			def.Tags = append(def.Tags, tag)
		}
		if !containsString(c.tagIndex[tag], id) {
			c.tagIndex[tag] = append(c.tagIndex[tag], id)
		}
	}
	return nil
}

// TaggedIDs returns the identifiers carrying tag in registration order.
func (c *Container) TaggedIDs(tag string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := c.tagIndex[tag]
	result := make([]string, len(ids))
	copy(result, ids)
	return result
}

// Get resolves id with the default ErrorOnMultiple behavior.
func (c *Container) Get(id string) (any, error) {
	return c.GetWithBehavior(id, ErrorOnMultiple)
}

// GetWithBehavior resolves id. The lookup order is: alias rewrite, shared
// cache, definition store, type index (id treated as a type name), then
// not-found. Behavior controls the reaction to ambiguous or missing results.
func (c *Container) GetWithBehavior(id string, behavior InvalidBehavior) (any, error) {
	if !behavior.IsValid() {
		return nil, fmt.Errorf("invalid behavior: %v", behavior)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.resolve(id, behavior, true)
}

// Definitions returns a snapshot of the definition store. The map is a copy;
// the definitions themselves are shared with the container and should be
// treated as read-only by enumeration consumers.
func (c *Container) Definitions() map[string]*Definition {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]*Definition, len(c.definitions))
	for id, def := range c.definitions {
		result[id] = def
	}
	return result
}

// Aliases returns a snapshot of the alias map.
func (c *Container) Aliases() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]string, len(c.aliases))
	for alias, target := range c.aliases {
		result[alias] = target
	}
	return result
}

// TypeIndex returns a snapshot of the type index.
func (c *Container) TypeIndex() map[string][]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string][]string, len(c.typeIndex))
	for name, ids := range c.typeIndex {
		copied := make([]string, len(ids))
		copy(copied, ids)
		result[name] = copied
	}
	return result
}

// index adds id to the type and tag indexes for def, honoring the excluded
// type list. Appends are idempotent.
func (c *Container) index(id string, def *Definition) {
	for _, t := range def.Types {
		if c.excluded[t] {
			continue
		}
		if !containsString(c.typeIndex[t], id) {
			c.typeIndex[t] = append(c.typeIndex[t], id)
		}
	}
	for _, tag := range def.Tags {
		if !containsString(c.tagIndex[tag], id) {
			c.tagIndex[tag] = append(c.tagIndex[tag], id)
		}
	}
}

// unindex removes id from the type and tag indexes.
func (c *Container) unindex(id string, def *Definition) {
	for _, t := range def.Types {
		c.typeIndex[t] = removeString(c.typeIndex[t], id)
		if len(c.typeIndex[t]) == 0 {
			delete(c.typeIndex, t)
		}
	}
	for _, tag := range def.Tags {
		c.tagIndex[tag] = removeString(c.tagIndex[tag], id)
		if len(c.tagIndex[tag]) == 0 {
			delete(c.tagIndex, tag)
		}
	}
}

// knownIDs collects every name the container can say anything about, for
// "did you mean" suggestions. externalOnly drops private definitions, which a
// top-level Get cannot see and therefore must not suggest.
func (c *Container) knownIDs(externalOnly bool) []string {
	ids := make([]string, 0, len(c.definitions)+len(c.aliases)+len(c.typeIndex))
	for id, def := range c.definitions {
		if externalOnly && !def.Public {
			continue
		}
		ids = append(ids, id)
	}
	for alias := range c.aliases {
		ids = append(ids, alias)
	}
	for name := range c.typeIndex {
		ids = append(ids, name)
	}
	return ids
}

func removeString(list []string, s string) []string {
	result := list[:0]
	for _, v := range list {
		if v != s {
			result = append(result, v)
		}
	}
	return result
}

// Resolve is a typed convenience wrapper around Container.Get.
func Resolve[T any](c *Container, id string) (T, error) {
	var zero T

	value, err := c.Get(id)
	if err != nil {
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("service %q is %T, not %s", id, value, TypeOf[T]())
	}
	return typed, nil
}
