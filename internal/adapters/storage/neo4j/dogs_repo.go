package neo4j

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pedigree-genetics/internal/domain/dogs"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var ErrNotFound = dogs.ErrNotFound

// DogsRepo implementa dogs.Repository sobre Neo4j.
// Los padres se leen de las relaciones SIRE_OF / DAM_OF. sire_id / dam_id
// quedan también como propiedades del hijo: una referencia a un perro que
// todavía no existe (pedigree importado) no puede ser relación, y se
// convierte en relación cuando ese perro se crea.
type DogsRepo struct {
	run Runner
}

func NewDogsRepo(run Runner) *DogsRepo {
	return &DogsRepo{run: run}
}

// EnsureSchema crea la constraint de unicidad de :Dog(id). Idempotente.
func (r *DogsRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.run.Run(ctx, `CREATE CONSTRAINT dog_id_unique IF NOT EXISTS FOR (d:Dog) REQUIRE d.id IS UNIQUE`, nil)
	return err
}

const returnDog = `
	RETURN d.id AS id, d.owner_user_id AS owner_user_id,
		d.name AS name, d.breed AS breed, d.color AS color, d.sex AS sex,
		d.birth_date AS birth_date, d.registration_number AS registration_number,
		d.image_url AS image_url, d.notes AS notes,
		d.created_at AS created_at, d.updated_at AS updated_at`

func (r *DogsRepo) Create(ctx context.Context, d dogs.Dog) error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("dog id required")
	}
	// hijos que ya lo referenciaban por id
	_, err := r.run.Run(ctx, `
		CREATE (d:Dog $props)
		WITH d
		OPTIONAL MATCH (c:Dog {sire_id: d.id})
		FOREACH (_ IN CASE WHEN c IS NULL THEN [] ELSE [1] END | MERGE (d)-[:SIRE_OF]->(c))
		WITH DISTINCT d
		OPTIONAL MATCH (c:Dog {dam_id: d.id})
		FOREACH (_ IN CASE WHEN c IS NULL THEN [] ELSE [1] END | MERGE (d)-[:DAM_OF]->(c))
		RETURN DISTINCT d.id AS id
	`, map[string]any{"props": props(d)})
	return err
}

func (r *DogsRepo) Update(ctx context.Context, d dogs.Dog) error {
	p := props(d)
	delete(p, "id")
	delete(p, "owner_user_id")
	delete(p, "created_at")

	res, err := r.run.Run(ctx, `
		MATCH (d:Dog {id: $id})
		SET d += $props
		RETURN d.id AS id
	`, map[string]any{"id": d.ID, "props": p})
	if err != nil {
		return err
	}
	if len(res.Records) == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DogsRepo) GetByID(ctx context.Context, id string) (dogs.Dog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return dogs.Dog{}, ErrNotFound
	}
	res, err := r.run.Run(ctx, `MATCH (d:Dog {id: $id})`+returnDog, map[string]any{"id": id})
	if err != nil {
		return dogs.Dog{}, err
	}
	if len(res.Records) == 0 {
		return dogs.Dog{}, ErrNotFound
	}
	return dogFromRecord(res.Records[0])
}

func (r *DogsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]dogs.Dog, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}
	res, err := r.run.Run(ctx, `
		MATCH (d:Dog {owner_user_id: $owner})
	`+returnDog+`
		ORDER BY created_at ASC, id ASC
	`, map[string]any{"owner": ownerUserID})
	if err != nil {
		return nil, err
	}

	out := make([]dogs.Dog, 0, len(res.Records))
	for _, rec := range res.Records {
		d, err := dogFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *DogsRepo) GetParents(ctx context.Context, dogID string) (dogs.ParentLink, error) {
	res, err := r.run.Run(ctx, `
		MATCH (d:Dog {id: $id})
		OPTIONAL MATCH (s:Dog)-[:SIRE_OF]->(d)
		OPTIONAL MATCH (m:Dog)-[:DAM_OF]->(d)
		RETURN coalesce(s.id, d.sire_id) AS sire_id, coalesce(m.id, d.dam_id) AS dam_id
		LIMIT 1
	`, map[string]any{"id": dogID})
	if err != nil {
		return dogs.ParentLink{}, err
	}
	if len(res.Records) == 0 {
		return dogs.ParentLink{}, ErrNotFound
	}
	rec := res.Records[0]
	return dogs.ParentLink{
		DogID:  dogID,
		SireID: str(rec, "sire_id"),
		DamID:  str(rec, "dam_id"),
	}, nil
}

// SetParents reemplaza las relaciones SIRE_OF / DAM_OF del hijo. Solo se
// crea la relación si el padre existe como nodo.
func (r *DogsRepo) SetParents(ctx context.Context, link dogs.ParentLink) error {
	res, err := r.run.Run(ctx, `
		MATCH (c:Dog {id: $id})
		SET c.sire_id = $sire, c.dam_id = $dam
		WITH c
		OPTIONAL MATCH (c)<-[old:SIRE_OF|DAM_OF]-()
		DELETE old
		WITH DISTINCT c
		OPTIONAL MATCH (s:Dog {id: $sire})
		FOREACH (_ IN CASE WHEN s IS NULL THEN [] ELSE [1] END | MERGE (s)-[:SIRE_OF]->(c))
		WITH c
		OPTIONAL MATCH (m:Dog {id: $dam})
		FOREACH (_ IN CASE WHEN m IS NULL THEN [] ELSE [1] END | MERGE (m)-[:DAM_OF]->(c))
		RETURN c.id AS id
	`, map[string]any{
		"id":   link.DogID,
		"sire": nullable(link.SireID),
		"dam":  nullable(link.DamID),
	})
	if err != nil {
		return err
	}
	if len(res.Records) == 0 {
		return ErrNotFound
	}
	return nil
}

func props(d dogs.Dog) map[string]any {
	p := map[string]any{
		"id":                  d.ID,
		"owner_user_id":       d.OwnerUserID,
		"name":                d.Name,
		"breed":               d.Breed,
		"color":               d.Color,
		"sex":                 string(d.Sex),
		"registration_number": d.RegistrationNumber,
		"image_url":           d.ImageURL,
		"notes":               d.Notes,
		"created_at":          d.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":          d.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"birth_date":          nil,
	}
	if d.BirthDate != nil {
		p["birth_date"] = d.BirthDate.Format(time.DateOnly)
	}
	return p
}

func dogFromRecord(rec *neo4j.Record) (dogs.Dog, error) {
	d := dogs.Dog{
		ID:                 str(rec, "id"),
		OwnerUserID:        str(rec, "owner_user_id"),
		Name:               str(rec, "name"),
		Breed:              str(rec, "breed"),
		Color:              str(rec, "color"),
		Sex:                dogs.Sex(str(rec, "sex")),
		RegistrationNumber: str(rec, "registration_number"),
		ImageURL:           str(rec, "image_url"),
		Notes:              str(rec, "notes"),
	}

	var err error
	if d.CreatedAt, err = parseTime(str(rec, "created_at")); err != nil {
		return dogs.Dog{}, fmt.Errorf("dog %s: created_at: %w", d.ID, err)
	}
	if d.UpdatedAt, err = parseTime(str(rec, "updated_at")); err != nil {
		return dogs.Dog{}, fmt.Errorf("dog %s: updated_at: %w", d.ID, err)
	}
	if bd := str(rec, "birth_date"); bd != "" {
		t, err := time.Parse(time.DateOnly, bd)
		if err != nil {
			return dogs.Dog{}, fmt.Errorf("dog %s: birth_date: %w", d.ID, err)
		}
		d.BirthDate = &t
	}
	return d, nil
}

func str(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
