package gaffer

// Deferred is the value produced for a lazy definition. The real construction
// happens on the first Value call and is memoized; until then the service
// graph behind the identifier stays unbuilt. For a shared lazy definition the
// container caches the Deferred itself, so every Get returns the same
// wrapper.
type Deferred struct {
	container *Container
	id        string

	done  bool
	value any
	err   error
}

func newDeferred(c *Container, id string) *Deferred {
	return &Deferred{container: c, id: id}
}

// ID returns the identifier the deferred construction is registered under.
func (d *Deferred) ID() string {
	return d.id
}

// Value constructs the underlying service on first call and returns the
// memoized result afterwards, including a memoized failure.
//
// Value acquires the container lock and must not be called from inside a
// constructor or binding, which already runs under that lock; doing so
// deadlocks. Store the Deferred and force it after resolution returns.
func (d *Deferred) Value() (any, error) {
	d.container.mu.Lock()
	defer d.container.mu.Unlock()

	if d.done {
		return d.value, d.err
	}

	d.value, d.err = d.container.forceDeferred(d.id)
	d.done = true
	return d.value, d.err
}

// forceDeferred builds a lazy definition's real value. The caller holds c.mu.
// The shared cache is left alone: for shared lazy definitions it holds the
// Deferred wrapper, and the wrapper memoizes the constructed value.
func (c *Container) forceDeferred(id string) (any, error) {
	def, ok := c.definitions[id]
	if !ok {
		return nil, NotFoundError{ID: id, Suggestion: closestID(id, c.knownIDs(false))}
	}

	if err := c.loading.Enter(id); err != nil {
		return nil, err
	}
	defer c.loading.Leave(id)

	return c.constructEager(id, def, false)
}
