package genetics

import "time"

type HealthStatus string

const (
	StatusClear   HealthStatus = "clear"
	StatusCarrier HealthStatus = "carrier"
	StatusAtRisk  HealthStatus = "at-risk"
)

func (s HealthStatus) Valid() bool {
	switch s {
	case StatusClear, StatusCarrier, StatusAtRisk:
		return true
	default:
		return false
	}
}

// GenotypeProfile es el resultado de un test de ADN. Loci: "D" => "D/d".
type GenotypeProfile struct {
	DogID         string                  `json:"dogId"`
	Breed         string                  `json:"breed,omitempty"`
	Loci          map[string]string       `json:"loci"`
	HealthMarkers map[string]HealthStatus `json:"healthMarkers"`
	Lab           string                  `json:"lab,omitempty"`
	TestedAt      *time.Time              `json:"testedAt,omitempty"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

type LocusPrediction struct {
	Locus        string `json:"locus"`
	Trait        string `json:"trait,omitempty"`
	SireGenotype string `json:"sireGenotype"`
	DamGenotype  string `json:"damGenotype"`
	// Porcentajes; cada mapa suma 100.
	Genotypes  map[string]float64 `json:"genotypes"`
	Phenotypes map[string]float64 `json:"phenotypes"`
}

type HealthPrediction struct {
	Marker     string       `json:"marker"`
	SireStatus HealthStatus `json:"sireStatus,omitempty"`
	DamStatus  HealthStatus `json:"damStatus,omitempty"`

	Clear   float64 `json:"clear"`
	Carrier float64 `json:"carrier"`
	AtRisk  float64 `json:"atRisk"`

	BothCarriers bool `json:"bothCarriers"`
	// Estimated: al menos un padre sin perfil; se usó la frecuencia de portadores de la raza.
	Estimated bool `json:"estimated"`
}

type Unpredictable struct {
	Locus  string `json:"locus"`
	Reason string `json:"reason"`
}

type OffspringPrediction struct {
	Loci          []LocusPrediction  `json:"loci"`
	HealthMarkers []HealthPrediction `json:"healthMarkers"`
	Warnings      []string           `json:"warnings"`
	Unpredictable []Unpredictable    `json:"unpredictable"`
	IsEstimate    bool               `json:"isEstimate"`
}
