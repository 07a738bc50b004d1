package dogs

import "time"

// Sex define el sexo del perro.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Breed lista las razas con tabla de conocimiento propia (ver domain/breeds).
// Se aceptan otras razas como texto libre.
type Breed string

const (
	BreedLabrador        Breed = "labrador"
	BreedGoldenRetriever Breed = "golden_retriever"
	BreedGermanShepherd  Breed = "german_shepherd"
	BreedBulldog         Breed = "bulldog"
	BreedPoodle          Breed = "poodle"
	BreedChihuahua       Breed = "chihuahua"
	BreedBeagle          Breed = "beagle"
	BreedBorderCollie    Breed = "border_collie"
	BreedOther           Breed = "other"
)

// Dog es la identidad de un perro dentro del pedigree.
// Inmutable salvo correcciones (UpdateProfile).
type Dog struct {
	ID          string
	OwnerUserID string

	Name  string
	Breed string
	Color string
	Sex   Sex

	BirthDate          *time.Time
	RegistrationNumber string
	ImageURL           string

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParentLink es la arista hijo -> {padre, madre}. IDs vacíos = ancestro desconocido.
type ParentLink struct {
	DogID  string
	SireID string
	DamID  string
}

func (l ParentLink) HasSire() bool { return l.SireID != "" }
func (l ParentLink) HasDam() bool  { return l.DamID != "" }
