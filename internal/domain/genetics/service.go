package genetics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pedigree-genetics/internal/domain/dogs"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("genotype not found")
	ErrForbidden    = errors.New("forbidden")
)

// DogLookup es lo que el service necesita del módulo dogs (dueño y raza).
type DogLookup interface {
	GetByID(ctx context.Context, id string) (dogs.Dog, error)
}

type Service struct {
	repo   Repository
	source Source
	dogs   DogLookup
	now    func() time.Time
}

// NewService: las lecturas pasan por source (repo + laboratorio externo si
// existe); las escrituras solo por repo.
func NewService(repo Repository, source Source, dogLookup DogLookup) *Service {
	if source == nil {
		source = repo
	}
	return &Service{
		repo:   repo,
		source: source,
		dogs:   dogLookup,
		now:    time.Now,
	}
}

type UpsertInput struct {
	Breed         string
	Loci          map[string]string
	HealthMarkers map[string]string
	Lab           string
	TestedAt      *time.Time
}

// Upsert guarda el perfil de ADN del perro. Solo el owner.
func (s *Service) Upsert(ctx context.Context, dogID, actorUserID string, in UpsertInput) (GenotypeProfile, error) {
	d, err := s.dogs.GetByID(ctx, strings.TrimSpace(dogID))
	if err != nil {
		return GenotypeProfile{}, err
	}
	if d.OwnerUserID != strings.TrimSpace(actorUserID) {
		return GenotypeProfile{}, ErrForbidden
	}

	p := GenotypeProfile{
		DogID:         d.ID,
		Breed:         strings.TrimSpace(in.Breed),
		Loci:          map[string]string{},
		HealthMarkers: map[string]HealthStatus{},
		Lab:           strings.TrimSpace(in.Lab),
		TestedAt:      in.TestedAt,
		UpdatedAt:     s.now().UTC(),
	}
	if p.Breed == "" {
		p.Breed = d.Breed
	}

	for name, raw := range in.Loci {
		name = canonicalLocus(name)
		if name == "" {
			return GenotypeProfile{}, fmt.Errorf("%w: empty locus name", ErrInvalidInput)
		}
		l, _ := lookupLocus(name)
		a1, a2, err := parseGenotype(raw, l.order)
		if err != nil {
			return GenotypeProfile{}, fmt.Errorf("%w: locus %s: %v", ErrInvalidInput, name, err)
		}
		a1, a2 = normalize(a1, a2, l.order)
		p.Loci[name] = genotypeKey(a1, a2)
	}

	for marker, raw := range in.HealthMarkers {
		marker = strings.TrimSpace(marker)
		status, err := ParseHealthStatus(raw)
		if marker == "" || err != nil {
			return GenotypeProfile{}, fmt.Errorf("%w: health marker %q must be clear, carrier or at-risk", ErrInvalidInput, marker)
		}
		p.HealthMarkers[marker] = status
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return GenotypeProfile{}, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, dogID string) (*GenotypeProfile, error) {
	dogID = strings.TrimSpace(dogID)
	if dogID == "" {
		return nil, ErrNotFound
	}
	p, err := s.source.Get(ctx, dogID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// ParseHealthStatus acepta "clear", "carrier", "at-risk" (y variantes at_risk / affected).
func ParseHealthStatus(raw string) (HealthStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "clear", "n/n":
		return StatusClear, nil
	case "carrier", "n/x":
		return StatusCarrier, nil
	case "at-risk", "at_risk", "atrisk", "affected", "x/x":
		return StatusAtRisk, nil
	default:
		return "", fmt.Errorf("%w: unknown health status %q", ErrInvalidInput, raw)
	}
}
