package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pedigree-genetics/internal/domain/breeding"
)

type analysesRepo struct {
	mu     sync.RWMutex
	byUser map[string][]breeding.Analysis
}

func NewAnalysesRepo() breeding.AnalysisLog {
	return &analysesRepo{
		byUser: make(map[string][]breeding.Analysis),
	}
}

func (r *analysesRepo) Append(ctx context.Context, a breeding.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("analysis id required")
	}
	r.byUser[a.UserID] = append(r.byUser[a.UserID], a)
	return nil
}

func (r *analysesRepo) ListByUser(ctx context.Context, userID string, limit int) ([]breeding.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	out := append([]breeding.Analysis(nil), r.byUser[userID]...)
	// Más recientes primero; a igual timestamp, el último agregado primero.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
