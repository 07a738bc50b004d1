package breeding

import (
	"context"
	"encoding/json"
	"time"

	"pedigree-genetics/internal/domain/coi"
	"pedigree-genetics/internal/domain/genetics"
	"pedigree-genetics/internal/domain/pedigree"
)

type Kind string

const (
	KindCOI           Kind = "coi"
	KindCompatibility Kind = "compatibility"
)

// Request es el pedido del criador: sire x dam, generaciones (0 = default) y loci opcionales.
type Request struct {
	SireID      string
	DamID       string
	Generations int
	Loci        []string
}

// COIReport es el COIResult más la identidad de los padres y los avisos de integridad.
type COIReport struct {
	coi.Result
	Sire              pedigree.DogRef             `json:"sire"`
	Dam               pedigree.DogRef             `json:"dam"`
	IntegrityWarnings []pedigree.IntegrityWarning `json:"integrityWarnings"`
	AnalysisID        string                      `json:"analysisId,omitempty"`
	Cached            bool                        `json:"cached"`
}

type CompatibilityReport struct {
	AnalysisID      string                       `json:"analysisId,omitempty"`
	COI             COIReport                    `json:"coi"`
	Genetics        genetics.OffspringPrediction `json:"genetics"`
	Recommendations []string                     `json:"recommendations"`
	HealthWarnings  []string                     `json:"healthWarnings"`
	IsEstimate      bool                         `json:"isEstimate"`
	AnalysisDate    time.Time                    `json:"analysisDate"`
}

// Analysis es una fila del historial (breeding_compatibility_analyses). Solo se agregan.
type Analysis struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Kind          Kind            `json:"kind"`
	SireID        string          `json:"sireId"`
	DamID         string          `json:"damId"`
	Generations   int             `json:"generations"`
	COIPercentage float64         `json:"coiPercentage"`
	RiskLevel     coi.RiskLevel   `json:"riskLevel"`
	IsEstimate    bool            `json:"isEstimate"`
	Result        json.RawMessage `json:"result"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type AnalysisLog interface {
	Append(ctx context.Context, a Analysis) error
	// ListByUser devuelve las más recientes primero.
	ListByUser(ctx context.Context, userID string, limit int) ([]Analysis, error)
}

// CachedCOI es lo que se guarda por (sire, dam, generaciones).
type CachedCOI struct {
	Result   coi.Result                  `json:"result"`
	Sire     pedigree.DogRef             `json:"sire"`
	Dam      pedigree.DogRef             `json:"dam"`
	Warnings []pedigree.IntegrityWarning `json:"warnings,omitempty"`
}

// ReportCache guarda resultados de COI con TTL. Un miss es (zero, false, nil).
type ReportCache interface {
	Get(ctx context.Context, key string) (CachedCOI, bool, error)
	Set(ctx context.Context, key string, v CachedCOI) error
}
