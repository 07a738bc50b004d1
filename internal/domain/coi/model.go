package coi

import "time"

type RiskLevel string

const (
	RiskLow         RiskLevel = "Low"
	RiskLowToMedium RiskLevel = "Low to Medium"
	RiskMedium      RiskLevel = "Medium"
	RiskHigh        RiskLevel = "High"
)

// RiskLevelFor es función escalonada pura del porcentaje:
// < 5 Low, [5,10) Low to Medium, [10,15] Medium, > 15 High.
func RiskLevelFor(coiPercentage float64) RiskLevel {
	switch {
	case coiPercentage < 5:
		return RiskLow
	case coiPercentage < 10:
		return RiskLowToMedium
	case coiPercentage <= 15:
		return RiskMedium
	default:
		return RiskHigh
	}
}

type KeyAncestor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Contribution es la porción del COI total atribuible al ancestro, en %.
	Contribution    float64 `json:"contribution"`
	PathDescription string  `json:"pathDescription"`
}

type Result struct {
	CoiPercentage       float64       `json:"coiPercentage"`
	DiversityAssessment string        `json:"diversityAssessment"`
	RiskLevel           RiskLevel     `json:"riskLevel"`
	Recommendations     []string      `json:"recommendations"`
	KeyAncestors        []KeyAncestor `json:"keyAncestors"`
	IsEstimate          bool          `json:"isEstimate"`
	AnalysisDate        time.Time     `json:"analysisDate"`

	Generations          int     `json:"generations"`
	CommonAncestorCount  int     `json:"commonAncestorCount"`
	PedigreeCompleteness float64 `json:"pedigreeCompleteness"`

	// Solo cuando IsEstimate.
	BreedAverageCOI        *float64 `json:"breedAverageCoi,omitempty"`
	EstimatedCOIPercentage *float64 `json:"estimatedCoiPercentage,omitempty"`
	EstimateNote           string   `json:"estimateNote,omitempty"`
}
