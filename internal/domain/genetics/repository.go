package genetics

import "context"

// Source es el Genotype Store de lectura: (nil, nil) si el perro no tiene test.
type Source interface {
	Get(ctx context.Context, dogID string) (*GenotypeProfile, error)
}

type Repository interface {
	Source
	Upsert(ctx context.Context, p GenotypeProfile) error
}

type firstAvailable []Source

// FirstAvailable consulta las fuentes en orden y devuelve el primer perfil encontrado.
// Un error de una fuente no corta la búsqueda; se devuelve solo si ninguna tuvo perfil.
func FirstAvailable(sources ...Source) Source {
	out := make(firstAvailable, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f firstAvailable) Get(ctx context.Context, dogID string) (*GenotypeProfile, error) {
	var lastErr error
	for _, s := range f {
		p, err := s.Get(ctx, dogID)
		if err != nil {
			lastErr = err
			continue
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, lastErr
}
