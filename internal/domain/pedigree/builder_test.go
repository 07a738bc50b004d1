package pedigree

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pedigree-genetics/internal/domain/dogs"
	"pedigree-genetics/internal/platform/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test store (in-memory)
// -------------------------

type testStore struct {
	mu       sync.Mutex
	dogs     map[string]dogs.Dog
	links    map[string]dogs.ParentLink
	failures map[string]int // id => cantidad de errores transitorios a devolver
	calls    map[string]int
}

func newTestStore() *testStore {
	return &testStore{
		dogs:     map[string]dogs.Dog{},
		links:    map[string]dogs.ParentLink{},
		failures: map[string]int{},
		calls:    map[string]int{},
	}
}

func (s *testStore) add(id string, sex dogs.Sex, sireID, damID string) {
	s.dogs[id] = dogs.Dog{ID: id, Name: "Dog " + id, Breed: "beagle", Sex: sex}
	s.links[id] = dogs.ParentLink{DogID: id, SireID: sireID, DamID: damID}
}

func (s *testStore) GetDog(ctx context.Context, id string) (dogs.Dog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[id]++
	if s.failures[id] > 0 {
		s.failures[id]--
		return dogs.Dog{}, errors.New("connection reset")
	}
	d, ok := s.dogs[id]
	if !ok {
		return dogs.Dog{}, dogs.ErrNotFound
	}
	return d, nil
}

func (s *testStore) GetParents(ctx context.Context, id string) (dogs.ParentLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[id]
	if !ok {
		return dogs.ParentLink{}, dogs.ErrNotFound
	}
	return l, nil
}

func newTestBuilder(s Store) *Builder {
	b := NewBuilder(s, 10)
	b.SetRetryPolicy(retry.Policy{MaxRetries: 1, InitialInterval: 1, MaxInterval: 1})
	return b
}

// fullPedigree arma un pedigree completo de gens generaciones sobre root.
func fullPedigree(s *testStore, root string, gens int) {
	var add func(id string, sex dogs.Sex, g int)
	add = func(id string, sex dogs.Sex, g int) {
		if g == gens {
			s.add(id, sex, "", "")
			return
		}
		s.add(id, sex, id+"S", id+"D")
		add(id+"S", dogs.SexMale, g+1)
		add(id+"D", dogs.SexFemale, g+1)
	}
	add(root, dogs.SexMale, 0)
}

func TestBuild_FullPedigree(t *testing.T) {
	s := newTestStore()
	fullPedigree(s, "x", 3)

	tree, err := newTestBuilder(s).Build(context.Background(), "x", 3)
	require.NoError(t, err)

	assert.Equal(t, 3, tree.Depth())
	assert.InDelta(t, 1.0, tree.Completeness(), 1e-9)
	assert.True(t, tree.CompleteThrough(2))
	assert.True(t, tree.CompleteThrough(3))
	assert.Empty(t, tree.Warnings)
	assert.Equal(t, "xSD", tree.Root.Sire.Dam.Dog.ID)
	assert.Equal(t, "Dog xSD", tree.Root.Sire.Dam.Dog.Name)
}

func TestBuild_DepthIsCappedByMaxGenerations(t *testing.T) {
	s := newTestStore()
	fullPedigree(s, "x", 6)

	for gens := 1; gens <= 8; gens++ {
		tree, err := newTestBuilder(s).Build(context.Background(), "x", gens)
		require.NoError(t, err)
		assert.Equal(t, min(6, gens), tree.Depth(), "gens=%d", gens)
	}
}

func TestNewBuilder_HardLimitIsCapped(t *testing.T) {
	s := newTestStore()
	s.add("x", dogs.SexMale, "", "")

	b := NewBuilder(s, 30)
	_, err := b.Build(context.Background(), "x", MaxDepth+1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = b.Build(context.Background(), "x", MaxDepth)
	assert.NoError(t, err)
}

func TestBuild_PartialPedigree(t *testing.T) {
	s := newTestStore()
	s.add("x", dogs.SexMale, "s", "")
	s.add("s", dogs.SexMale, "", "")

	tree, err := newTestBuilder(s).Build(context.Background(), "x", 2)
	require.NoError(t, err)

	require.NotNil(t, tree.Root.Sire)
	assert.Nil(t, tree.Root.Dam)
	assert.Equal(t, 1, tree.Depth())
	// 1 conocido de 6 casilleros
	assert.InDelta(t, 1.0/6.0, tree.Completeness(), 1e-9)
	assert.False(t, tree.CompleteThrough(1))
	assert.True(t, tree.CompleteThrough(0))
}

func TestBuild_RootOnly(t *testing.T) {
	s := newTestStore()
	s.add("x", dogs.SexMale, "", "")

	tree, err := newTestBuilder(s).Build(context.Background(), "x", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, tree.Depth())
	assert.Zero(t, tree.Completeness())
}

func TestBuild_RepeatedAncestorStaysInBothBranches(t *testing.T) {
	s := newTestStore()
	s.add("x", dogs.SexMale, "s", "d")
	s.add("s", dogs.SexMale, "g", "")
	s.add("d", dogs.SexFemale, "g", "")
	s.add("g", dogs.SexMale, "", "")

	tree, err := newTestBuilder(s).Build(context.Background(), "x", 3)
	require.NoError(t, err)

	require.NotNil(t, tree.Root.Sire.Sire)
	require.NotNil(t, tree.Root.Dam.Sire)
	assert.Equal(t, "g", tree.Root.Sire.Sire.Dog.ID)
	assert.Equal(t, "g", tree.Root.Dam.Sire.Dog.ID)
	assert.NotSame(t, tree.Root.Sire.Sire, tree.Root.Dam.Sire)
	assert.Empty(t, tree.Warnings)
}

func TestBuild_CycleIsTruncatedWithWarning(t *testing.T) {
	s := newTestStore()
	// a -> b -> a (datos corruptos)
	s.add("a", dogs.SexMale, "b", "")
	s.add("b", dogs.SexMale, "a", "")

	tree, err := newTestBuilder(s).Build(context.Background(), "a", 10)
	require.NoError(t, err)

	require.NotNil(t, tree.Root.Sire)
	assert.Nil(t, tree.Root.Sire.Sire)
	require.Len(t, tree.Warnings, 1)
	assert.Equal(t, WarningCycle, tree.Warnings[0].Kind)
	assert.Equal(t, "b", tree.Warnings[0].DogID)
	assert.Equal(t, "a", tree.Warnings[0].Ref)
}

func TestBuild_DanglingParentBecomesUnknown(t *testing.T) {
	s := newTestStore()
	s.add("x", dogs.SexMale, "ghost", "d")
	s.add("d", dogs.SexFemale, "", "")

	tree, err := newTestBuilder(s).Build(context.Background(), "x", 3)
	require.NoError(t, err)

	assert.Nil(t, tree.Root.Sire)
	require.NotNil(t, tree.Root.Dam)
	require.Len(t, tree.Warnings, 1)
	assert.Equal(t, WarningDanglingParent, tree.Warnings[0].Kind)
	assert.Equal(t, "ghost", tree.Warnings[0].Ref)
}

func TestBuild_SexInconsistentLinkIsKeptWithWarning(t *testing.T) {
	s := newTestStore()
	// "s" se cargó como sire de x y luego se corrigió a hembra
	s.add("x", dogs.SexMale, "s", "d")
	s.add("s", dogs.SexFemale, "", "")
	s.add("d", dogs.SexUnknown, "", "")

	tree, err := newTestBuilder(s).Build(context.Background(), "x", 3)
	require.NoError(t, err)

	require.NotNil(t, tree.Root.Sire)
	require.NotNil(t, tree.Root.Dam)
	require.Len(t, tree.Warnings, 1)
	assert.Equal(t, WarningParentSex, tree.Warnings[0].Kind)
	assert.Equal(t, "x", tree.Warnings[0].DogID)
	assert.Equal(t, "s", tree.Warnings[0].Ref)
	assert.Contains(t, tree.Warnings[0].Message, "linked as sire")
}

func TestBuild_Errors(t *testing.T) {
	s := newTestStore()
	s.add("x", dogs.SexMale, "", "")
	b := newTestBuilder(s)

	_, err := b.Build(context.Background(), "", 3)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = b.Build(context.Background(), "x", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = b.Build(context.Background(), "x", 11)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = b.Build(context.Background(), "nope", 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuild_TransientErrorIsRetriedOnce(t *testing.T) {
	s := newTestStore()
	s.add("x", dogs.SexMale, "", "")
	s.failures["x"] = 1

	tree, err := newTestBuilder(s).Build(context.Background(), "x", 2)
	require.NoError(t, err)
	assert.Equal(t, "x", tree.Root.Dog.ID)
	assert.Equal(t, 2, s.calls["x"])
}

func TestBuild_PersistentErrorIsUpstreamUnavailable(t *testing.T) {
	s := newTestStore()
	s.add("x", dogs.SexMale, "", "")
	s.failures["x"] = 5

	_, err := newTestBuilder(s).Build(context.Background(), "x", 2)
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Equal(t, 2, s.calls["x"])
}
