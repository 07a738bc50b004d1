package dogs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("dog not found")
	ErrForbidden    = errors.New("forbidden")
	ErrCycle        = errors.New("parent link would make the dog its own ancestor")
)

// maxAncestorWalk acota la búsqueda de ciclos en SetParents.
const maxAncestorWalk = 64

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name               string
	Breed              string
	Color              string
	Sex                string
	BirthDate          *time.Time
	RegistrationNumber string
	ImageURL           string
	Notes              string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Dog, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Dog{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Dog{}, ErrInvalidInput
	}
	sex, err := ParseSex(in.Sex)
	if err != nil {
		return Dog{}, err
	}

	now := s.now()
	d := Dog{
		ID:                 uuid.NewString(),
		OwnerUserID:        strings.TrimSpace(ownerUserID),
		Name:               strings.TrimSpace(in.Name),
		Breed:              strings.TrimSpace(in.Breed),
		Color:              strings.TrimSpace(in.Color),
		Sex:                sex,
		BirthDate:          in.BirthDate,
		RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
		ImageURL:           strings.TrimSpace(in.ImageURL),
		Notes:              strings.TrimSpace(in.Notes),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return Dog{}, err
	}
	return d, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Dog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Dog{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Dog, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// PatchBirthDate distingue "no enviado" de "enviado null" (limpiar).
type PatchBirthDate struct {
	Present bool
	Value   *time.Time
}

type UpdateProfileInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name               *string
	Breed              *string
	Color              *string
	Sex                *string
	BirthDate          PatchBirthDate
	RegistrationNumber *string
	ImageURL           *string
	Notes              *string
}

// UpdateProfile aplica correcciones. Solo el owner puede corregir.
func (s *Service) UpdateProfile(ctx context.Context, dogID, actorUserID string, in UpdateProfileInput) (Dog, error) {
	d, err := s.GetByID(ctx, dogID)
	if err != nil {
		return Dog{}, err
	}
	if d.OwnerUserID != strings.TrimSpace(actorUserID) {
		return Dog{}, ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Dog{}, ErrInvalidInput
		}
		d.Name = name
	}
	if in.Breed != nil {
		d.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Color != nil {
		d.Color = strings.TrimSpace(*in.Color)
	}
	if in.Sex != nil {
		sex, err := ParseSex(*in.Sex)
		if err != nil {
			return Dog{}, err
		}
		d.Sex = sex
	}
	if in.BirthDate.Present {
		d.BirthDate = in.BirthDate.Value
	}
	if in.RegistrationNumber != nil {
		d.RegistrationNumber = strings.TrimSpace(*in.RegistrationNumber)
	}
	if in.ImageURL != nil {
		d.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Notes != nil {
		d.Notes = strings.TrimSpace(*in.Notes)
	}

	d.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, d); err != nil {
		return Dog{}, err
	}
	return d, nil
}

type SetParentsInput struct {
	SireID string
	DamID  string
}

// SetParents registra padre/madre. Valida sexo y que el perro no termine
// siendo su propio ancestro.
func (s *Service) SetParents(ctx context.Context, dogID, actorUserID string, in SetParentsInput) (ParentLink, error) {
	d, err := s.GetByID(ctx, dogID)
	if err != nil {
		return ParentLink{}, err
	}
	if d.OwnerUserID != strings.TrimSpace(actorUserID) {
		return ParentLink{}, ErrForbidden
	}

	link := ParentLink{
		DogID:  d.ID,
		SireID: strings.TrimSpace(in.SireID),
		DamID:  strings.TrimSpace(in.DamID),
	}
	if link.SireID != "" && link.SireID == link.DamID {
		return ParentLink{}, fmt.Errorf("%w: sire and dam must be different dogs", ErrInvalidInput)
	}

	if link.SireID != "" {
		if err := s.checkParent(ctx, d.ID, link.SireID, SexFemale); err != nil {
			return ParentLink{}, err
		}
	}
	if link.DamID != "" {
		if err := s.checkParent(ctx, d.ID, link.DamID, SexMale); err != nil {
			return ParentLink{}, err
		}
	}

	if err := s.repo.SetParents(ctx, link); err != nil {
		return ParentLink{}, err
	}
	return link, nil
}

func (s *Service) GetParents(ctx context.Context, dogID string) (ParentLink, error) {
	dogID = strings.TrimSpace(dogID)
	if dogID == "" {
		return ParentLink{}, ErrNotFound
	}
	return s.repo.GetParents(ctx, dogID)
}

func (s *Service) checkParent(ctx context.Context, childID, parentID string, wrongSex Sex) error {
	if parentID == childID {
		return ErrCycle
	}
	p, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: parent %s does not exist", ErrInvalidInput, parentID)
		}
		return err
	}
	if p.Sex == wrongSex {
		return fmt.Errorf("%w: parent %s has sex %s", ErrInvalidInput, parentID, p.Sex)
	}

	isAncestor, err := s.isAncestor(ctx, childID, parentID)
	if err != nil {
		return err
	}
	if isAncestor {
		return ErrCycle
	}
	return nil
}

// isAncestor responde si candidateID aparece entre los ancestros de startID.
func (s *Service) isAncestor(ctx context.Context, candidateID, startID string) (bool, error) {
	seen := map[string]struct{}{}
	frontier := []string{startID}

	for depth := 0; depth < maxAncestorWalk && len(frontier) > 0; depth++ {
		next := make([]string, 0, len(frontier)*2)
		for _, id := range frontier {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			link, err := s.repo.GetParents(ctx, id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					continue
				}
				return false, err
			}
			for _, pid := range []string{link.SireID, link.DamID} {
				if pid == "" {
					continue
				}
				if pid == candidateID {
					return true, nil
				}
				next = append(next, pid)
			}
		}
		frontier = next
	}
	return false, nil
}

func ParseSex(raw string) (Sex, error) {
	switch Sex(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SexUnknown:
		return SexUnknown, nil
	case SexMale:
		return SexMale, nil
	case SexFemale:
		return SexFemale, nil
	default:
		return "", fmt.Errorf("%w: sex must be male, female or unknown", ErrInvalidInput)
	}
}
