package pedigree

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pedigree-genetics/internal/domain/dogs"
	"pedigree-genetics/internal/platform/retry"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("dog not found")
	ErrUpstreamUnavailable = errors.New("pedigree store unavailable")
)

// Store es la vista de solo lectura del Pedigree Store que necesita el builder.
// MaxDepth es el máximo absoluto de generaciones que recorre un Builder.
const MaxDepth = 12

type Store interface {
	GetDog(ctx context.Context, id string) (dogs.Dog, error)
	GetParents(ctx context.Context, id string) (dogs.ParentLink, error)
}

type Builder struct {
	store     Store
	hardLimit int
	retry     retry.Policy
}

// NewBuilder crea el Ancestry Tree Builder. hardLimit acota maxGenerations
// para que ningún request pida árboles de 2^30 nodos.
func NewBuilder(store Store, hardLimit int) *Builder {
	if hardLimit <= 0 {
		hardLimit = 10
	}
	hardLimit = min(hardLimit, MaxDepth)
	return &Builder{
		store:     store,
		hardLimit: hardLimit,
		retry:     retry.Once(),
	}
}

// SetRetryPolicy reemplaza el reintento por defecto (un reintento con backoff).
func (b *Builder) SetRetryPolicy(p retry.Policy) {
	b.retry = p
}

func (b *Builder) HardLimit() int {
	return b.hardLimit
}

// Build arma el árbol de ancestros de dogID hasta maxGenerations generaciones.
// Ancestros faltantes o irresolubles quedan en nil; nunca falla por pedigree corto.
func (b *Builder) Build(ctx context.Context, dogID string, maxGenerations int) (*Tree, error) {
	dogID = strings.TrimSpace(dogID)
	if dogID == "" {
		return nil, fmt.Errorf("%w: dog id required", ErrInvalidInput)
	}
	if maxGenerations < 1 || maxGenerations > b.hardLimit {
		return nil, fmt.Errorf("%w: generations must be between 1 and %d", ErrInvalidInput, b.hardLimit)
	}

	root, err := b.getDog(ctx, dogID)
	if err != nil {
		if errors.Is(err, dogs.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dogID)
		}
		return nil, err
	}

	w := &walk{
		b:       b,
		maxGen:  maxGenerations,
		onPath:  map[string]struct{}{},
		results: &Tree{MaxGenerations: maxGenerations},
	}
	node, err := w.build(ctx, root, 0)
	if err != nil {
		return nil, err
	}
	w.results.Root = node
	return w.results, nil
}

type walk struct {
	b       *Builder
	maxGen  int
	onPath  map[string]struct{} // ids en la cadena actual (no global)
	results *Tree
}

func (w *walk) build(ctx context.Context, d dogs.Dog, gen int) (*Node, error) {
	node := &Node{Dog: RefOf(d)}
	if gen >= w.maxGen {
		return node, nil
	}

	link, err := w.b.getParents(ctx, d.ID)
	if err != nil {
		if errors.Is(err, dogs.ErrNotFound) {
			return node, nil
		}
		return nil, err
	}

	w.onPath[d.ID] = struct{}{}
	defer delete(w.onPath, d.ID)

	if node.Sire, err = w.parent(ctx, d.ID, link.SireID, dogs.SexMale, gen); err != nil {
		return nil, err
	}
	if node.Dam, err = w.parent(ctx, d.ID, link.DamID, dogs.SexFemale, gen); err != nil {
		return nil, err
	}
	return node, nil
}

func (w *walk) parent(ctx context.Context, childID, parentID string, want dogs.Sex, gen int) (*Node, error) {
	if parentID == "" {
		return nil, nil
	}
	if _, loop := w.onPath[parentID]; loop {
		w.warn(IntegrityWarning{
			Kind:    WarningCycle,
			DogID:   childID,
			Ref:     parentID,
			Message: fmt.Sprintf("dog %s appears in its own ancestry; branch truncated", parentID),
		})
		return nil, nil
	}

	p, err := w.b.getDog(ctx, parentID)
	if err != nil {
		if errors.Is(err, dogs.ErrNotFound) {
			w.warn(IntegrityWarning{
				Kind:    WarningDanglingParent,
				DogID:   childID,
				Ref:     parentID,
				Message: fmt.Sprintf("parent %s of %s does not exist; treated as unknown", parentID, childID),
			})
			return nil, nil
		}
		return nil, err
	}
	// el vínculo se conserva: el ancestro sigue contando para el COI
	if p.Sex != want && p.Sex != dogs.SexUnknown && p.Sex != "" {
		w.warn(IntegrityWarning{
			Kind:    WarningParentSex,
			DogID:   childID,
			Ref:     parentID,
			Message: fmt.Sprintf("%s is linked as %s of %s but is recorded as %s", parentID, roleOf(want), childID, p.Sex),
		})
	}
	return w.build(ctx, p, gen+1)
}

func roleOf(sex dogs.Sex) string {
	if sex == dogs.SexMale {
		return "sire"
	}
	return "dam"
}

func (w *walk) warn(iw IntegrityWarning) {
	w.results.Warnings = append(w.results.Warnings, iw)
}

func (b *Builder) getDog(ctx context.Context, id string) (dogs.Dog, error) {
	d, err := retry.Do(ctx, b.retry, func(ctx context.Context) (dogs.Dog, error) {
		return b.store.GetDog(ctx, id)
	}, isPermanent)
	return d, classify(err)
}

func (b *Builder) getParents(ctx context.Context, id string) (dogs.ParentLink, error) {
	l, err := retry.Do(ctx, b.retry, func(ctx context.Context) (dogs.ParentLink, error) {
		return b.store.GetParents(ctx, id)
	}, isPermanent)
	return l, classify(err)
}

func isPermanent(err error) bool {
	return errors.Is(err, dogs.ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// classify deja pasar not-found y cancelaciones; el resto es UpstreamUnavailable.
func classify(err error) error {
	if err == nil || isPermanent(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}
