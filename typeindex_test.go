package gaffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedSingleCandidate(t *testing.T) {
	c := New()

	_, err := c.Set("consoleLogger", NewDefinition(NewTConsoleLogger).As("TLogger"))
	require.NoError(t, err)

	assert.True(t, c.Typed("TLogger"))
	assert.Equal(t, []string{"consoleLogger"}, c.TypedIDs("TLogger"))

	value, err := c.Get("TLogger")
	require.NoError(t, err)
	assert.IsType(t, &TConsoleLogger{}, value)
}

func TestTypedMultipleCandidatesError(t *testing.T) {
	c := New()

	_, err := c.Set("consoleLogger", NewDefinition(NewTConsoleLogger).As("TLogger"))
	require.NoError(t, err)
	_, err = c.Set("fileLogger", NewDefinition(NewTFileLogger).As("TLogger"))
	require.NoError(t, err)

	_, err = c.Get("TLogger")
	require.ErrorIs(t, err, ErrMultipleServices)

	var multiple MultipleServicesError
	require.ErrorAs(t, err, &multiple)
	assert.Equal(t, []string{"consoleLogger", "fileLogger"}, multiple.Candidates)
	assert.Contains(t, err.Error(), "consoleLogger, fileLogger")
}

func TestTypedMultipleCandidatesCollectAll(t *testing.T) {
	c := New()

	_, err := c.Set("consoleLogger", NewDefinition(NewTConsoleLogger).As("TLogger"))
	require.NoError(t, err)
	_, err = c.Set("fileLogger", NewDefinition(NewTFileLogger).As("TLogger"))
	require.NoError(t, err)

	value, err := c.GetWithBehavior("TLogger", CollectAll)
	require.NoError(t, err)

	values, ok := value.([]any)
	require.True(t, ok)
	require.Len(t, values, 2)
	assert.IsType(t, &TConsoleLogger{}, values[0])
	assert.IsType(t, &TFileLogger{}, values[1])
}

func TestTypedSingleCandidateCollectAll(t *testing.T) {
	c := New()

	_, err := c.Set("consoleLogger", NewDefinition(NewTConsoleLogger).As("TLogger"))
	require.NoError(t, err)

	value, err := c.GetWithBehavior("TLogger", CollectAll)
	require.NoError(t, err)

	values, ok := value.([]any)
	require.True(t, ok)
	assert.Len(t, values, 1)
}

func TestTypedCandidatesNaturalOrder(t *testing.T) {
	c := New()

	// Registration order is scrambled; the error lists candidates in natural
	// numeric-aware order, bounded to first and last beyond three.
	for _, id := range []string{"svc10", "svc2", "svc1", "svc7", "svc3"} {
		_, err := c.Set(id, NewDefinition(1).As("TNumbered"))
		require.NoError(t, err)
	}

	_, err := c.Get("TNumbered")
	var multiple MultipleServicesError
	require.ErrorAs(t, err, &multiple)
	assert.Equal(t, []string{"svc1", "svc2", "svc3", "svc7", "svc10"}, multiple.Candidates)
	assert.Contains(t, err.Error(), "svc1, ..., svc10")
	assert.NotContains(t, err.Error(), "svc2")
}

func TestTypedIDsPreserveInsertionOrder(t *testing.T) {
	c := New()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		_, err := c.Set(id, NewDefinition(1).As("TOrdered"))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, c.TypedIDs("TOrdered"))
}

func TestExcludedTypesAreSkipped(t *testing.T) {
	c := New(WithExcludedTypes("TMarker"))

	_, err := c.Set("svc", NewDefinition(NewTConsoleLogger).As("TMarker", "TLogger"))
	require.NoError(t, err)

	assert.False(t, c.Typed("TMarker"))
	assert.True(t, c.Typed("TLogger"))

	// The concrete identifier stays directly gettable.
	_, err = c.Get("svc")
	require.NoError(t, err)
}

func TestDuplicateTypeDeclarationIsIdempotent(t *testing.T) {
	c := New()

	_, err := c.Set("svc", NewDefinition(1).As("TNumber", "TNumber"))
	require.NoError(t, err)

	assert.Equal(t, []string{"svc"}, c.TypedIDs("TNumber"))
}

func TestTypedUnknownType(t *testing.T) {
	c := New()

	assert.False(t, c.Typed("TUnknown"))
	assert.Empty(t, c.TypedIDs("TUnknown"))

	_, err := c.Get("TUnknown")
	require.ErrorIs(t, err, ErrNotFound)
}
