package gaffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Registration
// ============================================================================

func TestSetAndHas(t *testing.T) {
	c := New()

	def, err := c.Set("config", NewDefinition(&TConfig{Path: "app.yml"}))
	require.NoError(t, err)
	require.NotNil(t, def)

	assert.True(t, c.Has("config"))
	assert.False(t, c.Has("missing"))
}

func TestSetNilDefinition(t *testing.T) {
	c := New()

	_, err := c.Set("bad", nil)
	require.ErrorIs(t, err, ErrNilDefinition)
}

func TestSetReplacesDefinition(t *testing.T) {
	c := New()

	_, err := c.Set("svc", NewDefinition(1).As("TOld"))
	require.NoError(t, err)
	_, err = c.Set("svc", NewDefinition(2).As("TNew"))
	require.NoError(t, err)

	value, err := c.Get("svc")
	require.NoError(t, err)
	assert.Equal(t, 2, value)

	// Replacement must drop the previous definition's type entries.
	assert.False(t, c.Typed("TOld"))
	assert.True(t, c.Typed("TNew"))
}

func TestSetFrozenAfterSharedResolution(t *testing.T) {
	c := New()

	_, err := c.Set("svc", NewDefinition(NewTConsoleLogger))
	require.NoError(t, err)

	_, err = c.Get("svc")
	require.NoError(t, err)

	_, err = c.Set("svc", NewDefinition(NewTFileLogger))
	require.ErrorIs(t, err, ErrFrozen)

	var frozen FrozenError
	require.ErrorAs(t, err, &frozen)
	assert.Equal(t, "svc", frozen.ID)
}

func TestSetNotFrozenForFactory(t *testing.T) {
	c := New()

	_, err := c.Set("svc", NewDefinition(NewTConsoleLogger).SetShared(false))
	require.NoError(t, err)

	_, err = c.Get("svc")
	require.NoError(t, err)

	// Nothing was cached, so redefinition stays legal.
	_, err = c.Set("svc", NewDefinition(NewTFileLogger))
	require.NoError(t, err)
}

func TestRemove(t *testing.T) {
	c := New()

	_, err := c.Set("svc", NewDefinition(NewTConsoleLogger).As("TLogger"))
	require.NoError(t, err)
	_, err = c.Get("svc")
	require.NoError(t, err)

	c.Remove("svc")

	assert.False(t, c.Has("svc"))
	assert.False(t, c.Typed("TLogger"))

	// The cache entry is gone too, so the identifier is no longer frozen.
	_, err = c.Set("svc", NewDefinition(NewTFileLogger))
	require.NoError(t, err)
}

// ============================================================================
// Aliases
// ============================================================================

func TestAliasTransitivity(t *testing.T) {
	c := New()

	_, err := c.Set("a", NewDefinition(NewTConsoleLogger))
	require.NoError(t, err)

	require.NoError(t, c.Alias("b", "a"))
	require.NoError(t, c.Alias("c", "b"))

	// Chains collapse at creation time: c points at a, not b.
	assert.Equal(t, "a", c.ResolveAlias("c"))
	assert.Equal(t, "a", c.ResolveAlias("b"))

	direct, err := c.Get("a")
	require.NoError(t, err)
	viaAlias, err := c.Get("c")
	require.NoError(t, err)
	assert.Same(t, direct, viaAlias)
}

func TestAliasSelfRejected(t *testing.T) {
	c := New()

	err := c.Alias("a", "a")
	require.ErrorIs(t, err, ErrInvalidAlias)
}

func TestAliasSelfAfterCollapseRejected(t *testing.T) {
	c := New()

	_, err := c.Set("a", NewDefinition(1))
	require.NoError(t, err)
	require.NoError(t, c.Alias("b", "a"))

	// "a" -> "b" would collapse to "a" -> "a".
	err = c.Alias("a", "b")
	require.ErrorIs(t, err, ErrInvalidAlias)
}

func TestAliasUnknownTargetRejected(t *testing.T) {
	c := New()

	err := c.Alias("b", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAliasToTypeName(t *testing.T) {
	c := New()

	_, err := c.Set("consoleLogger", NewDefinition(NewTConsoleLogger).As("TLogger"))
	require.NoError(t, err)

	// A type-index entry is a valid alias target.
	require.NoError(t, c.Alias("logger", "TLogger"))

	value, err := c.Get("logger")
	require.NoError(t, err)
	assert.IsType(t, &TConsoleLogger{}, value)
}

func TestResolveAliasPassthrough(t *testing.T) {
	c := New()
	assert.Equal(t, "plain", c.ResolveAlias("plain"))
}

// ============================================================================
// Tags
// ============================================================================

func TestTagAndTaggedIDs(t *testing.T) {
	c := New()

	_, err := c.Set("a", NewDefinition(1))
	require.NoError(t, err)
	_, err = c.Set("b", NewDefinition(2).Tagged("exporter"))
	require.NoError(t, err)

	require.NoError(t, c.Tag("a", "exporter", "exporter"))

	assert.Equal(t, []string{"b", "a"}, c.TaggedIDs("exporter"))
	assert.Empty(t, c.TaggedIDs("unknown"))
}

func TestTagUnknownService(t *testing.T) {
	c := New()

	err := c.Tag("missing", "exporter")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTagThroughAlias(t *testing.T) {
	c := New()

	_, err := c.Set("a", NewDefinition(1))
	require.NoError(t, err)
	require.NoError(t, c.Alias("b", "a"))

	require.NoError(t, c.Tag("b", "exporter"))
	assert.Equal(t, []string{"a"}, c.TaggedIDs("exporter"))
}

// ============================================================================
// Reset
// ============================================================================

func TestResetClearsEverything(t *testing.T) {
	c := New()

	_, err := c.Set("svc", NewDefinition(NewTConsoleLogger).As("TLogger"))
	require.NoError(t, err)
	require.NoError(t, c.Alias("alias", "svc"))
	_, err = c.Get("svc")
	require.NoError(t, err)

	c.Reset()

	assert.False(t, c.Has("svc"))
	assert.False(t, c.Has("alias"))
	assert.False(t, c.Typed("TLogger"))

	// A previously frozen identifier accepts a new definition after Reset.
	_, err = c.Set("svc", NewDefinition(NewTFileLogger))
	require.NoError(t, err)
}

func TestResetNotifiesResettableInstances(t *testing.T) {
	c := New()

	_, err := c.Set("svc", NewDefinition(NewTResettable))
	require.NoError(t, err)

	value, err := c.Get("svc")
	require.NoError(t, err)

	c.Reset()

	assert.Equal(t, 1, value.(*TResettable).ResetCalls)
}

// ============================================================================
// Enumeration & Helpers
// ============================================================================

func TestEnumerationSnapshots(t *testing.T) {
	c := New()

	_, err := c.Set("a", NewDefinition(1).As("TNumber"))
	require.NoError(t, err)
	require.NoError(t, c.Alias("b", "a"))

	defs := c.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, 1, defs["a"].Entity)

	assert.Equal(t, map[string]string{"b": "a"}, c.Aliases())
	assert.Equal(t, map[string][]string{"TNumber": {"a"}}, c.TypeIndex())

	// Snapshots are copies: mutating them must not affect the container.
	delete(defs, "a")
	assert.True(t, c.Has("a"))
}

func TestContainerID(t *testing.T) {
	a, b := New(), New()
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestResolveTyped(t *testing.T) {
	c := New()

	_, err := c.Set("logger", NewDefinition(NewTConsoleLogger))
	require.NoError(t, err)

	logger, err := Resolve[*TConsoleLogger](c, "logger")
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = Resolve[*TFileLogger](c, "logger")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TConsoleLogger")
}
