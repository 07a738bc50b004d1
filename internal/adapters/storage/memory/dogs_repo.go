package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pedigree-genetics/internal/domain/dogs"
)

// ErrNotFound es el mismo sentinel del dominio para que errors.Is funcione en capas superiores.
var ErrNotFound = dogs.ErrNotFound

type dogRepo struct {
	mu      sync.RWMutex
	byID    map[string]dogs.Dog
	parents map[string]dogs.ParentLink
}

func NewDogRepo() dogs.Repository {
	return &dogRepo{
		byID:    make(map[string]dogs.Dog),
		parents: make(map[string]dogs.ParentLink),
	}
}

func (r *dogRepo) Create(ctx context.Context, d dogs.Dog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("dog id required")
	}
	if _, exists := r.byID[d.ID]; exists {
		return errors.New("dog already exists")
	}
	r.byID[d.ID] = d
	return nil
}

func (r *dogRepo) Update(ctx context.Context, d dogs.Dog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[d.ID]; !exists {
		return ErrNotFound
	}
	r.byID[d.ID] = d
	return nil
}

func (r *dogRepo) GetByID(ctx context.Context, id string) (dogs.Dog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return dogs.Dog{}, ErrNotFound
	}
	return d, nil
}

func (r *dogRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]dogs.Dog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dogs.Dog, 0)
	for _, d := range r.byID {
		if d.OwnerUserID == ownerUserID {
			out = append(out, d)
		}
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *dogRepo) GetParents(ctx context.Context, dogID string) (dogs.ParentLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.byID[dogID]; !ok {
		return dogs.ParentLink{}, ErrNotFound
	}
	link, ok := r.parents[dogID]
	if !ok {
		return dogs.ParentLink{DogID: dogID}, nil
	}
	return link, nil
}

// SetParents no valida existencia de los padres: eso es responsabilidad del service.
// Así se pueden cargar pedigrees parciales o con referencias colgantes (datos importados).
func (r *dogRepo) SetParents(ctx context.Context, link dogs.ParentLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[link.DogID]; !ok {
		return ErrNotFound
	}
	r.parents[link.DogID] = link
	return nil
}
