package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cadence/internal/domain"
	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
)

// backlogOf builds a backlog from shorthand features for graph tests.
func backlogOf(features ...domain.Feature) *domain.Backlog {
	b := domain.NewBacklog("demo")
	b.Features = features
	return b
}

func feat(id string, passes bool, deps ...string) domain.Feature {
	return domain.Feature{
		ID:           id,
		Priority:     domain.PriorityMedium,
		Description:  id + " behavior",
		Passes:       passes,
		Dependencies: deps,
	}
}

func TestDetectCycles_Acyclic(t *testing.T) {
	b := backlogOf(
		feat("a", false),
		feat("b", false, "a"),
		feat("c", false, "a", "b"),
	)

	assert.Empty(t, DetectCycles(b))
}

func TestDetectCycles_SingleCycle(t *testing.T) {
	b := backlogOf(
		feat("a", false, "b"),
		feat("b", false, "c"),
		feat("c", false, "a"),
	)

	cycles := DetectCycles(b)
	require.Len(t, cycles, 1)
	assert.Equal(t, "a -> b -> c -> a", cycles[0].String())
}

func TestDetectCycles_SelfReferenceViaPair(t *testing.T) {
	b := backlogOf(
		feat("a", false, "b"),
		feat("b", false, "a"),
	)

	cycles := DetectCycles(b)
	require.Len(t, cycles, 1)
	assert.Equal(t, "a -> b -> a", cycles[0].String())
}

func TestDetectCycles_MultipleIndependentCycles(t *testing.T) {
	b := backlogOf(
		feat("a", false, "b"),
		feat("b", false, "a"),
		feat("x", false, "y"),
		feat("y", false, "x"),
		feat("free", false),
	)

	cycles := DetectCycles(b)
	require.Len(t, cycles, 2)
	assert.Equal(t, "a -> b -> a", cycles[0].String())
	assert.Equal(t, "x -> y -> x", cycles[1].String())
}

func TestDetectCycles_PassingTargetBreaksCycle(t *testing.T) {
	// A passing dependency is satisfied; the edge to it cannot block and
	// therefore cannot form a live cycle.
	b := backlogOf(
		feat("a", false, "b"),
		feat("b", true, "a"),
	)

	assert.Empty(t, DetectCycles(b))
}

func TestDetectCycles_IgnoresUnresolvableEdges(t *testing.T) {
	b := backlogOf(
		feat("a", false, "ghost"),
	)

	assert.Empty(t, DetectCycles(b))
}

func TestReadySet_NoDependencies(t *testing.T) {
	b := backlogOf(
		feat("a", false),
		feat("b", false),
	)

	ready, warnings := ReadySet(b)
	assert.Empty(t, warnings)
	require.Len(t, ready, 2)
	assert.Equal(t, "a", ready[0].ID)
	assert.Equal(t, "b", ready[1].ID)
}

func TestReadySet_UnmetDependencyBlocks(t *testing.T) {
	b := backlogOf(
		feat("a", false),
		feat("b", false, "a"),
	)

	ready, warnings := ReadySet(b)
	assert.Empty(t, warnings)
	require.Len(t, ready, 1)
	assert.Equal(t, "a", ready[0].ID)
}

func TestReadySet_SatisfiedDependencyUnblocks(t *testing.T) {
	b := backlogOf(
		feat("a", true),
		feat("b", false, "a"),
	)

	ready, warnings := ReadySet(b)
	assert.Empty(t, warnings)
	require.Len(t, ready, 1)
	assert.Equal(t, "b", ready[0].ID)
}

func TestReadySet_PassingFeaturesExcluded(t *testing.T) {
	b := backlogOf(
		feat("a", true),
		feat("b", true),
	)

	ready, warnings := ReadySet(b)
	assert.Empty(t, warnings)
	assert.Empty(t, ready)
}

func TestReadySet_UnresolvableDependencyWarns(t *testing.T) {
	b := backlogOf(
		feat("a", false, "ghost"),
		feat("b", false),
	)

	ready, warnings := ReadySet(b)
	require.Len(t, ready, 1)
	assert.Equal(t, "b", ready[0].ID, "feature with unresolvable dependency is never ready")

	require.Len(t, warnings, 1)
	assert.Equal(t, "a", warnings[0].FeatureID)
	assert.Equal(t, "ghost", warnings[0].MissingDependency)
	assert.ErrorIs(t, warnings[0].Error(), cadenceerrors.ErrDataIntegrity)
}

func TestReadySet_PreservesInsertionOrder(t *testing.T) {
	// Priority ordering is the scheduler's job; the ready set itself keeps
	// backlog insertion order for stable tie-breaking downstream.
	b := backlogOf(
		feat("low-first", false),
		feat("critical-second", false),
	)
	b.Features[0].Priority = domain.PriorityLow
	b.Features[1].Priority = domain.PriorityCritical

	ready, _ := ReadySet(b)
	require.Len(t, ready, 2)
	assert.Equal(t, "low-first", ready[0].ID)
	assert.Equal(t, "critical-second", ready[1].ID)
}
