package dogs

import "context"

// GetDog expone el perro para el Ancestry Tree Builder (pedigree.Store).
// Junto con GetParents evita ciclos de imports (dogs <-> pedigree).
func (s *Service) GetDog(ctx context.Context, id string) (Dog, error) {
	return s.GetByID(ctx, id)
}
