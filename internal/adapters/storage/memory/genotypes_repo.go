package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pedigree-genetics/internal/domain/genetics"
)

type genotypeRepo struct {
	mu    sync.RWMutex
	byDog map[string]genetics.GenotypeProfile
}

func NewGenotypeRepo() genetics.Repository {
	return &genotypeRepo{
		byDog: make(map[string]genetics.GenotypeProfile),
	}
}

// Get devuelve (nil, nil) si el perro no tiene perfil cargado.
func (r *genotypeRepo) Get(ctx context.Context, dogID string) (*genetics.GenotypeProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byDog[dogID]
	if !ok {
		return nil, nil
	}
	cp := clone(p)
	return &cp, nil
}

func (r *genotypeRepo) Upsert(ctx context.Context, p genetics.GenotypeProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.DogID) == "" {
		return errors.New("dog id required")
	}
	r.byDog[p.DogID] = clone(p)
	return nil
}

// clone evita que el caller modifique los mapas guardados.
func clone(p genetics.GenotypeProfile) genetics.GenotypeProfile {
	loci := make(map[string]string, len(p.Loci))
	for k, v := range p.Loci {
		loci[k] = v
	}
	markers := make(map[string]genetics.HealthStatus, len(p.HealthMarkers))
	for k, v := range p.HealthMarkers {
		markers[k] = v
	}
	p.Loci = loci
	p.HealthMarkers = markers
	return p
}
