package postgres

import (
	"context"
	"database/sql"

	"pedigree-genetics/internal/domain/breeding"
	"pedigree-genetics/internal/domain/coi"
)

// AnalysesRepo es append-only: no hay UPDATE ni DELETE.
type AnalysesRepo struct {
	db *sql.DB
}

func NewAnalysesRepo(db *sql.DB) *AnalysesRepo {
	return &AnalysesRepo{db: db}
}

func (r *AnalysesRepo) Append(ctx context.Context, a breeding.Analysis) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO breeding_compatibility_analyses (
			id, user_id, kind,
			sire_id, dam_id, generations,
			coi_percentage, risk_level, is_estimate,
			result, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		a.ID,
		a.UserID,
		string(a.Kind),
		a.SireID,
		a.DamID,
		a.Generations,
		a.COIPercentage,
		string(a.RiskLevel),
		a.IsEstimate,
		string(a.Result),
		a.CreatedAt,
	)
	return err
}

func (r *AnalysesRepo) ListByUser(ctx context.Context, userID string, limit int) ([]breeding.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id, kind,
			sire_id, dam_id, generations,
			coi_percentage, risk_level, is_estimate,
			result, created_at
		FROM breeding_compatibility_analyses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]breeding.Analysis, 0)
	for rows.Next() {
		var a breeding.Analysis
		var kind, risk string
		var result []byte
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&kind,
			&a.SireID,
			&a.DamID,
			&a.Generations,
			&a.COIPercentage,
			&risk,
			&a.IsEstimate,
			&result,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.Kind = breeding.Kind(kind)
		a.RiskLevel = coi.RiskLevel(risk)
		a.Result = result
		out = append(out, a)
	}
	return out, rows.Err()
}
