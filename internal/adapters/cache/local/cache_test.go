package local

import (
	"context"
	"testing"
	"time"

	"pedigree-genetics/internal/domain/breeding"
	"pedigree-genetics/internal/domain/coi"
	"pedigree-genetics/internal/domain/pedigree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute, 0)

	_, ok, err := c.Get(ctx, "coi:a:b:5")
	require.NoError(t, err)
	assert.False(t, ok)

	v := breeding.CachedCOI{
		Result: coi.Result{CoiPercentage: 12.5, RiskLevel: coi.RiskMedium},
		Sire:   pedigree.DogRef{ID: "a"},
		Dam:    pedigree.DogRef{ID: "b"},
	}
	require.NoError(t, c.Set(ctx, "coi:a:b:5", v))

	got, ok, err := c.Get(ctx, "coi:a:b:5")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v, got)
	assert.Equal(t, 1, c.ItemCount())

	c.Flush()
	assert.Zero(t, c.ItemCount())
}

func TestCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := New(20*time.Millisecond, 0)

	require.NoError(t, c.Set(ctx, "k", breeding.CachedCOI{}))
	time.Sleep(40 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
