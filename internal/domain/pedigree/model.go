package pedigree

import "pedigree-genetics/internal/domain/dogs"

// DogRef es la identidad parcial que viaja en el árbol.
type DogRef struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Breed              string   `json:"breed"`
	Color              string   `json:"color"`
	Sex                dogs.Sex `json:"sex"`
	RegistrationNumber string   `json:"registrationNumber,omitempty"`
	Image              string   `json:"image,omitempty"`
}

func RefOf(d dogs.Dog) DogRef {
	return DogRef{
		ID:                 d.ID,
		Name:               d.Name,
		Breed:              d.Breed,
		Color:              d.Color,
		Sex:                d.Sex,
		RegistrationNumber: d.RegistrationNumber,
		Image:              d.ImageURL,
	}
}

// Node es un AncestryNode. Sire/Dam nil = desconocido (o truncado).
// Un mismo ancestro puede aparecer en varias ramas como nodos distintos.
type Node struct {
	Dog  DogRef `json:"dog"`
	Sire *Node  `json:"sire"`
	Dam  *Node  `json:"dam"`
}

// Depth devuelve cuántas generaciones de ancestros conocidos cuelgan del nodo.
func (n *Node) Depth() int {
	if n == nil {
		return -1
	}
	return 1 + max(n.Sire.Depth(), n.Dam.Depth())
}

// knownAncestors cuenta ancestros conocidos hasta maxGen generaciones.
func (n *Node) knownAncestors(maxGen int) int {
	if n == nil || maxGen <= 0 {
		return 0
	}
	count := 0
	for _, p := range []*Node{n.Sire, n.Dam} {
		if p != nil {
			count += 1 + p.knownAncestors(maxGen-1)
		}
	}
	return count
}

type WarningKind string

const (
	WarningCycle          WarningKind = "cycle"
	WarningDanglingParent WarningKind = "dangling_parent"
	// el padre registrado como sire es hembra (o la dam es macho)
	WarningParentSex      WarningKind = "parent_sex_mismatch"
)

// IntegrityWarning es un DataIntegrityWarning: se loguea y la rama queda en nil.
type IntegrityWarning struct {
	Kind    WarningKind `json:"kind"`
	DogID   string      `json:"dogId"`
	Ref     string      `json:"ref"`
	Message string      `json:"message"`
}

// Tree es el resultado del builder para un perro.
type Tree struct {
	Root           *Node              `json:"root"`
	MaxGenerations int                `json:"maxGenerations"`
	Warnings       []IntegrityWarning `json:"warnings,omitempty"`
}

// Depth = min(profundidad real del pedigree, MaxGenerations).
func (t *Tree) Depth() int {
	if t == nil || t.Root == nil {
		return 0
	}
	return t.Root.Depth()
}

// CompleteThrough indica si se conocen todos los ancestros de las primeras
// gens generaciones (ambos padres, los cuatro abuelos, ...).
func (t *Tree) CompleteThrough(gens int) bool {
	if t == nil || t.Root == nil {
		return false
	}
	if gens <= 0 {
		return true
	}
	return t.Root.knownAncestors(gens) == (1<<(gens+1))-2
}

// Completeness es la fracción de casilleros de ancestros conocidos en
// MaxGenerations generaciones (2 + 4 + ... + 2^N).
func (t *Tree) Completeness() float64 {
	if t == nil || t.Root == nil || t.MaxGenerations <= 0 {
		return 0
	}
	slots := (1 << (t.MaxGenerations + 1)) - 2
	return float64(t.Root.knownAncestors(t.MaxGenerations)) / float64(slots)
}
