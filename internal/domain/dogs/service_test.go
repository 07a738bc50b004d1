package dogs_test

import (
	"context"
	"testing"

	"pedigree-genetics/internal/adapters/storage/memory"
	"pedigree-genetics/internal/domain/dogs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDog(t *testing.T, svc *dogs.Service, owner, name, sex string) dogs.Dog {
	t.Helper()
	d, err := svc.Create(context.Background(), owner, dogs.CreateInput{Name: name, Breed: "beagle", Sex: sex})
	require.NoError(t, err)
	return d
}

func TestCreate_Validation(t *testing.T) {
	svc := dogs.NewService(memory.NewDogRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "", dogs.CreateInput{Name: "Rex"})
	assert.ErrorIs(t, err, dogs.ErrInvalidInput)

	_, err = svc.Create(ctx, "u1", dogs.CreateInput{Name: "  "})
	assert.ErrorIs(t, err, dogs.ErrInvalidInput)

	_, err = svc.Create(ctx, "u1", dogs.CreateInput{Name: "Rex", Sex: "cat"})
	assert.ErrorIs(t, err, dogs.ErrInvalidInput)

	d, err := svc.Create(ctx, " u1 ", dogs.CreateInput{Name: " Rex ", Sex: "MALE"})
	require.NoError(t, err)
	assert.Equal(t, "u1", d.OwnerUserID)
	assert.Equal(t, "Rex", d.Name)
	assert.Equal(t, dogs.SexMale, d.Sex)
	assert.NotEmpty(t, d.ID)
}

func TestSetParents(t *testing.T) {
	svc := dogs.NewService(memory.NewDogRepo())
	ctx := context.Background()

	sire := newDog(t, svc, "u1", "Max", "male")
	dam := newDog(t, svc, "u1", "Luna", "female")
	pup := newDog(t, svc, "u1", "Rex", "male")

	link, err := svc.SetParents(ctx, pup.ID, "u1", dogs.SetParentsInput{SireID: sire.ID, DamID: dam.ID})
	require.NoError(t, err)
	assert.Equal(t, dogs.ParentLink{DogID: pup.ID, SireID: sire.ID, DamID: dam.ID}, link)

	got, err := svc.GetParents(ctx, pup.ID)
	require.NoError(t, err)
	assert.Equal(t, link, got)

	t.Run("only owner", func(t *testing.T) {
		_, err := svc.SetParents(ctx, pup.ID, "u2", dogs.SetParentsInput{SireID: sire.ID})
		assert.ErrorIs(t, err, dogs.ErrForbidden)
	})
	t.Run("wrong sex", func(t *testing.T) {
		_, err := svc.SetParents(ctx, pup.ID, "u1", dogs.SetParentsInput{SireID: dam.ID})
		assert.ErrorIs(t, err, dogs.ErrInvalidInput)
		_, err = svc.SetParents(ctx, pup.ID, "u1", dogs.SetParentsInput{DamID: sire.ID})
		assert.ErrorIs(t, err, dogs.ErrInvalidInput)
	})
	t.Run("unknown parent", func(t *testing.T) {
		_, err := svc.SetParents(ctx, pup.ID, "u1", dogs.SetParentsInput{SireID: "ghost"})
		assert.ErrorIs(t, err, dogs.ErrInvalidInput)
	})
	t.Run("same dog twice", func(t *testing.T) {
		_, err := svc.SetParents(ctx, pup.ID, "u1", dogs.SetParentsInput{SireID: sire.ID, DamID: sire.ID})
		assert.ErrorIs(t, err, dogs.ErrInvalidInput)
	})
	t.Run("own parent", func(t *testing.T) {
		_, err := svc.SetParents(ctx, pup.ID, "u1", dogs.SetParentsInput{SireID: pup.ID})
		assert.ErrorIs(t, err, dogs.ErrCycle)
	})
	t.Run("descendant as parent", func(t *testing.T) {
		// Max no puede ser hijo de su propio hijo
		_, err := svc.SetParents(ctx, sire.ID, "u1", dogs.SetParentsInput{SireID: pup.ID})
		assert.ErrorIs(t, err, dogs.ErrCycle)
	})
	t.Run("unknown dog", func(t *testing.T) {
		_, err := svc.SetParents(ctx, "ghost", "u1", dogs.SetParentsInput{})
		assert.ErrorIs(t, err, dogs.ErrNotFound)
	})
}

func TestUpdateProfile(t *testing.T) {
	svc := dogs.NewService(memory.NewDogRepo())
	ctx := context.Background()
	d := newDog(t, svc, "u1", "Rex", "male")

	color := "Chocolate"
	updated, err := svc.UpdateProfile(ctx, d.ID, "u1", dogs.UpdateProfileInput{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "Chocolate", updated.Color)
	assert.Equal(t, "Rex", updated.Name)

	empty := ""
	_, err = svc.UpdateProfile(ctx, d.ID, "u1", dogs.UpdateProfileInput{Name: &empty})
	assert.ErrorIs(t, err, dogs.ErrInvalidInput)

	_, err = svc.UpdateProfile(ctx, d.ID, "u2", dogs.UpdateProfileInput{Color: &color})
	assert.ErrorIs(t, err, dogs.ErrForbidden)
}

func TestListByOwner(t *testing.T) {
	svc := dogs.NewService(memory.NewDogRepo())
	ctx := context.Background()
	newDog(t, svc, "u1", "Rex", "male")
	newDog(t, svc, "u1", "Luna", "female")
	newDog(t, svc, "u2", "Max", "male")

	list, err := svc.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
