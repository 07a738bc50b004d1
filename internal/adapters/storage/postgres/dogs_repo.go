package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pedigree-genetics/internal/domain/dogs"
)

type DogsRepo struct {
	db *sql.DB
}

func NewDogsRepo(db *sql.DB) *DogsRepo {
	return &DogsRepo{db: db}
}

const dogColumns = `
	id, owner_user_id,
	name, breed, color, sex,
	birth_date, registration_number, image_url, notes,
	created_at, updated_at`

func (r *DogsRepo) Create(ctx context.Context, d dogs.Dog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dogs (`+dogColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		d.ID,
		d.OwnerUserID,
		d.Name,
		d.Breed,
		d.Color,
		string(d.Sex),
		toNullDate(d.BirthDate),
		d.RegistrationNumber,
		d.ImageURL,
		d.Notes,
		d.CreatedAt,
		d.UpdatedAt,
	)
	return err
}

func (r *DogsRepo) Update(ctx context.Context, d dogs.Dog) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE dogs
		SET
			name = $2,
			breed = $3,
			color = $4,
			sex = $5,
			birth_date = $6,
			registration_number = $7,
			image_url = $8,
			notes = $9,
			updated_at = $10
		WHERE id = $1
	`,
		d.ID,
		d.Name,
		d.Breed,
		d.Color,
		string(d.Sex),
		toNullDate(d.BirthDate),
		d.RegistrationNumber,
		d.ImageURL,
		d.Notes,
		d.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DogsRepo) GetByID(ctx context.Context, id string) (dogs.Dog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return dogs.Dog{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+dogColumns+` FROM dogs WHERE id = $1`, id)
	d, err := scanDog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dogs.Dog{}, ErrNotFound
		}
		return dogs.Dog{}, err
	}
	return d, nil
}

func (r *DogsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]dogs.Dog, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+dogColumns+`
		FROM dogs
		WHERE owner_user_id = $1
		ORDER BY created_at ASC, id ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]dogs.Dog, 0)
	for rows.Next() {
		d, err := scanDog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DogsRepo) GetParents(ctx context.Context, dogID string) (dogs.ParentLink, error) {
	var sire, dam sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT sire_id, dam_id FROM dogs WHERE id = $1`, dogID).Scan(&sire, &dam)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dogs.ParentLink{}, ErrNotFound
		}
		return dogs.ParentLink{}, err
	}
	return dogs.ParentLink{DogID: dogID, SireID: sire.String, DamID: dam.String}, nil
}

// SetParents no valida que los padres existan (ver service).
func (r *DogsRepo) SetParents(ctx context.Context, link dogs.ParentLink) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE dogs SET sire_id = $2, dam_id = $3 WHERE id = $1
	`, link.DogID, toNullString(link.SireID), toNullString(link.DamID))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDog(s rowScanner) (dogs.Dog, error) {
	var d dogs.Dog
	var sex string
	var bd sql.NullTime
	if err := s.Scan(
		&d.ID,
		&d.OwnerUserID,
		&d.Name,
		&d.Breed,
		&d.Color,
		&sex,
		&bd,
		&d.RegistrationNumber,
		&d.ImageURL,
		&d.Notes,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return dogs.Dog{}, err
	}
	d.Sex = dogs.Sex(sex)
	// ojo: birth_date es date, pgx lo mapea a time.Time midnight UTC
	d.BirthDate = fromNullDate(bd)
	return d, nil
}
