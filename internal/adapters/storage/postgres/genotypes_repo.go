package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pedigree-genetics/internal/domain/genetics"
)

type GenotypesRepo struct {
	db *sql.DB
}

func NewGenotypesRepo(db *sql.DB) *GenotypesRepo {
	return &GenotypesRepo{db: db}
}

// Get devuelve (nil, nil) si el perro no tiene perfil.
func (r *GenotypesRepo) Get(ctx context.Context, dogID string) (*genetics.GenotypeProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT dog_id, breed, loci, health_markers, lab, tested_at, updated_at
		FROM dog_genotypes
		WHERE dog_id = $1
	`, dogID)

	var p genetics.GenotypeProfile
	var loci, markers []byte
	var tested sql.NullTime
	if err := row.Scan(&p.DogID, &p.Breed, &loci, &markers, &p.Lab, &tested, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(loci, &p.Loci); err != nil {
		return nil, fmt.Errorf("genotype %s: decode loci: %w", dogID, err)
	}
	if err := json.Unmarshal(markers, &p.HealthMarkers); err != nil {
		return nil, fmt.Errorf("genotype %s: decode health markers: %w", dogID, err)
	}
	p.TestedAt = fromNullDate(tested)
	return &p, nil
}

func (r *GenotypesRepo) Upsert(ctx context.Context, p genetics.GenotypeProfile) error {
	loci, err := json.Marshal(nonNil(p.Loci))
	if err != nil {
		return err
	}
	markers, err := json.Marshal(nonNil(p.HealthMarkers))
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO dog_genotypes (dog_id, breed, loci, health_markers, lab, tested_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (dog_id) DO UPDATE SET
			breed = EXCLUDED.breed,
			loci = EXCLUDED.loci,
			health_markers = EXCLUDED.health_markers,
			lab = EXCLUDED.lab,
			tested_at = EXCLUDED.tested_at,
			updated_at = EXCLUDED.updated_at
	`,
		p.DogID,
		p.Breed,
		string(loci),
		string(markers),
		p.Lab,
		toNullDate(p.TestedAt),
		p.UpdatedAt,
	)
	return err
}

func nonNil[V any](m map[string]V) map[string]V {
	if m == nil {
		return map[string]V{}
	}
	return m
}
