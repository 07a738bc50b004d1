// Package breeds contiene la tabla estática de conocimiento por raza:
// COI promedio (prior para estimaciones), frecuencia de portadores por
// marcador de salud y severidad de cada condición.
package breeds

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Condition describe un marcador de salud recesivo.
type Condition struct {
	Name     string   `yaml:"name" json:"name"`
	Severity Severity `yaml:"severity" json:"severity"`
}

// Profile es el conocimiento de una raza.
type Profile struct {
	// AverageCOI en porcentaje (0..100).
	AverageCOI float64 `yaml:"average_coi"`
	// CarrierRates: marcador => frecuencia de portadores (0..1).
	CarrierRates map[string]float64 `yaml:"carrier_rates"`
}

type Knowledge struct {
	Breeds     map[string]Profile   `yaml:"breeds"`
	Conditions map[string]Condition `yaml:"conditions"`
}

// Default devuelve la tabla incorporada. Cada llamada devuelve una copia nueva.
func Default() *Knowledge {
	return &Knowledge{
		Breeds: map[string]Profile{
			"labrador": {AverageCOI: 6.5, CarrierRates: map[string]float64{
				"PRA": 0.08, "EIC": 0.30, "CNM": 0.05, "DM": 0.15, "HNPK": 0.10,
			}},
			"golden_retriever": {AverageCOI: 6.2, CarrierRates: map[string]float64{
				"PRA": 0.06, "ICH": 0.50, "DM": 0.05,
			}},
			"german_shepherd": {AverageCOI: 5.0, CarrierRates: map[string]float64{
				"DM": 0.35, "MDR1": 0.10, "HUU": 0.02,
			}},
			"bulldog": {AverageCOI: 9.0, CarrierRates: map[string]float64{
				"HUU": 0.55, "CMR1": 0.10, "DM": 0.20,
			}},
			"poodle": {AverageCOI: 5.5, CarrierRates: map[string]float64{
				"PRA": 0.10, "vWD1": 0.06, "DM": 0.08, "NEWS": 0.01,
			}},
			"chihuahua": {AverageCOI: 4.0, CarrierRates: map[string]float64{
				"PRA": 0.04, "DM": 0.10,
			}},
			"beagle": {AverageCOI: 6.0, CarrierRates: map[string]float64{
				"IGS": 0.10, "NCCD": 0.07, "PKD": 0.05,
			}},
			"border_collie": {AverageCOI: 5.5, CarrierRates: map[string]float64{
				"CEA": 0.25, "TNS": 0.08, "MDR1": 0.02, "NCL": 0.02,
			}},
		},
		Conditions: map[string]Condition{
			"PRA":  {Name: "Progressive Retinal Atrophy", Severity: SeveritySevere},
			"EIC":  {Name: "Exercise-Induced Collapse", Severity: SeverityModerate},
			"CNM":  {Name: "Centronuclear Myopathy", Severity: SeveritySevere},
			"DM":   {Name: "Degenerative Myelopathy", Severity: SeveritySevere},
			"HNPK": {Name: "Hereditary Nasal Parakeratosis", Severity: SeverityMild},
			"ICH":  {Name: "Ichthyosis", Severity: SeverityMild},
			"MDR1": {Name: "Multi-Drug Resistance 1", Severity: SeverityModerate},
			"HUU":  {Name: "Hyperuricosuria", Severity: SeverityModerate},
			"CMR1": {Name: "Canine Multifocal Retinopathy", Severity: SeverityMild},
			"vWD1": {Name: "von Willebrand Disease type 1", Severity: SeverityModerate},
			"NEWS": {Name: "Neonatal Encephalopathy with Seizures", Severity: SeveritySevere},
			"IGS":  {Name: "Imerslund-Gräsbeck Syndrome", Severity: SeverityModerate},
			"NCCD": {Name: "Neonatal Cerebellar Cortical Degeneration", Severity: SeveritySevere},
			"PKD":  {Name: "Pyruvate Kinase Deficiency", Severity: SeveritySevere},
			"CEA":  {Name: "Collie Eye Anomaly", Severity: SeverityModerate},
			"TNS":  {Name: "Trapped Neutrophil Syndrome", Severity: SeveritySevere},
			"NCL":  {Name: "Neuronal Ceroid Lipofuscinosis", Severity: SeveritySevere},
		},
	}
}

// Load parte de Default y aplica encima el YAML de path (si path != "").
// Las razas/condiciones del archivo reemplazan las incorporadas con la misma clave.
func Load(path string) (*Knowledge, error) {
	k := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return k, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("breeds: read %s: %w", path, err)
	}

	var override Knowledge
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("breeds: parse %s: %w", path, err)
	}

	for name, p := range override.Breeds {
		k.Breeds[NormalizeBreed(name)] = p
	}
	for marker, c := range override.Conditions {
		marker = strings.TrimSpace(marker)
		if marker == "" {
			continue
		}
		switch c.Severity {
		case SeverityMild, SeverityModerate, SeveritySevere:
		default:
			return nil, fmt.Errorf("breeds: condition %s: unknown severity %q", marker, c.Severity)
		}
		k.Conditions[marker] = c
	}
	return k, nil
}

// NormalizeBreed lleva "Golden Retriever" / "golden-retriever" a "golden_retriever".
func NormalizeBreed(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

// AverageCOI devuelve el prior de la raza. Cruces entre razas distintas
// (o razas desconocidas) no tienen prior: 0, false.
func (k *Knowledge) AverageCOI(sireBreed, damBreed string) (float64, bool) {
	if k == nil {
		return 0, false
	}
	a, b := NormalizeBreed(sireBreed), NormalizeBreed(damBreed)
	if a == "" || a != b {
		return 0, false
	}
	p, ok := k.Breeds[a]
	if !ok {
		return 0, false
	}
	return p.AverageCOI, true
}

// CarrierRates devuelve las frecuencias de portadores de la raza (nil si no hay datos).
func (k *Knowledge) CarrierRates(breed string) map[string]float64 {
	if k == nil {
		return nil
	}
	p, ok := k.Breeds[NormalizeBreed(breed)]
	if !ok {
		return nil
	}
	return p.CarrierRates
}

// Condition busca un marcador sin distinguir mayúsculas ("prA" == "PRA").
func (k *Knowledge) Condition(marker string) (Condition, bool) {
	if k == nil {
		return Condition{}, false
	}
	if c, ok := k.Conditions[marker]; ok {
		return c, true
	}
	for key, c := range k.Conditions {
		if strings.EqualFold(key, marker) {
			return c, true
		}
	}
	return Condition{}, false
}

// DisplayName devuelve el nombre de la condición o el marcador tal cual.
func (k *Knowledge) DisplayName(marker string) string {
	if c, ok := k.Condition(marker); ok && c.Name != "" {
		return c.Name
	}
	return marker
}

// KnownBreeds lista las razas con datos, ordenadas.
func (k *Knowledge) KnownBreeds() []string {
	if k == nil {
		return nil
	}
	out := make([]string, 0, len(k.Breeds))
	for b := range k.Breeds {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}
