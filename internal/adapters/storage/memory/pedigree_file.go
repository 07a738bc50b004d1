package memory

import (
	"context"
	"fmt"
	"io"
	"strings"

	"pedigree-genetics/internal/domain/dogs"

	"gopkg.in/yaml.v3"
)

// PedigreeFile es el formato YAML que acepta el CLI:
//
//	dogs:
//	  - id: rex
//	    name: Rex
//	    breed: labrador
//	    sex: male
//	    sire: max
//	    dam: luna
type PedigreeFile struct {
	Dogs []PedigreeEntry `yaml:"dogs"`
}

type PedigreeEntry struct {
	ID                 string `yaml:"id"`
	Name               string `yaml:"name"`
	Breed              string `yaml:"breed"`
	Color              string `yaml:"color"`
	Sex                string `yaml:"sex"`
	RegistrationNumber string `yaml:"registration"`
	Sire               string `yaml:"sire"`
	Dam                string `yaml:"dam"`
}

// LoadPedigree carga un PedigreeFile en un repo en memoria. Los padres que
// no figuran en el archivo quedan como referencias colgantes, igual que en
// un pedigree importado.
func LoadPedigree(ctx context.Context, r io.Reader) (dogs.Repository, error) {
	var f PedigreeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("pedigree file: %w", err)
	}

	repo := NewDogRepo()
	for i, e := range f.Dogs {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("pedigree file: entry %d has no id", i)
		}
		sex, err := dogs.ParseSex(e.Sex)
		if err != nil {
			return nil, fmt.Errorf("pedigree file: dog %s: %w", id, err)
		}
		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = id
		}
		if err := repo.Create(ctx, dogs.Dog{
			ID:                 id,
			Name:               name,
			Breed:              strings.TrimSpace(e.Breed),
			Color:              strings.TrimSpace(e.Color),
			Sex:                sex,
			RegistrationNumber: strings.TrimSpace(e.RegistrationNumber),
		}); err != nil {
			return nil, fmt.Errorf("pedigree file: dog %s: %w", id, err)
		}
	}

	for _, e := range f.Dogs {
		link := dogs.ParentLink{
			DogID:  strings.TrimSpace(e.ID),
			SireID: strings.TrimSpace(e.Sire),
			DamID:  strings.TrimSpace(e.Dam),
		}
		if !link.HasSire() && !link.HasDam() {
			continue
		}
		if err := repo.SetParents(ctx, link); err != nil {
			return nil, err
		}
	}
	return repo, nil
}
