package dogs

import "context"

// Repository es el Pedigree Store. Las implementaciones devuelven ErrNotFound
// cuando el perro no existe y deben soportar lecturas concurrentes.
type Repository interface {
	Create(ctx context.Context, d Dog) error
	Update(ctx context.Context, d Dog) error
	GetByID(ctx context.Context, id string) (Dog, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Dog, error)

	GetParents(ctx context.Context, dogID string) (ParentLink, error)
	SetParents(ctx context.Context, link ParentLink) error
}
