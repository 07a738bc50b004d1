package genetics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"pedigree-genetics/internal/domain/breeds"
)

type Predictor struct {
	breeds *breeds.Knowledge
}

func NewPredictor(k *breeds.Knowledge) *Predictor {
	if k == nil {
		k = breeds.Default()
	}
	return &Predictor{breeds: k}
}

// Parents agrupa los perfiles y, para estimar cuando falta un perfil, la raza de cada padre.
type Parents struct {
	Sire      *GenotypeProfile
	Dam       *GenotypeProfile
	SireBreed string
	DamBreed  string
}

// PredictOffspring segrega cada locus por separado (loci no ligados).
// loci vacío => todos los loci y marcadores presentes en alguno de los perfiles.
func (p *Predictor) PredictOffspring(sire, dam *GenotypeProfile, loci []string) OffspringPrediction {
	return p.Predict(Parents{Sire: sire, Dam: dam}, loci)
}

func (p *Predictor) Predict(in Parents, loci []string) OffspringPrediction {
	out := OffspringPrediction{
		Loci:          []LocusPrediction{},
		HealthMarkers: []HealthPrediction{},
		Warnings:      []string{},
		Unpredictable: []Unpredictable{},
	}

	color, markers := p.selectLoci(in, loci)
	for _, name := range sortedLoci(color) {
		p.predictLocus(&out, in, name)
	}
	for _, m := range markers {
		p.predictMarker(&out, in, m)
	}

	sort.SliceStable(out.Unpredictable, func(i, j int) bool {
		return out.Unpredictable[i].Locus < out.Unpredictable[j].Locus
	})
	return out
}

func (p *Predictor) selectLoci(in Parents, requested []string) ([]string, []string) {
	color := newNameSet()
	markers := newNameSet()

	if len(requested) == 0 {
		for _, prof := range []*GenotypeProfile{in.Sire, in.Dam} {
			if prof == nil {
				continue
			}
			for l := range prof.Loci {
				color.add(canonicalLocus(l))
			}
			for m := range prof.HealthMarkers {
				markers.add(strings.TrimSpace(m))
			}
		}
		if in.Sire == nil && in.Dam == nil {
			for _, b := range []string{p.sireBreed(in), p.damBreed(in)} {
				for m := range p.breeds.CarrierRates(b) {
					markers.add(m)
				}
			}
		}
		return color.sorted(), markers.sorted()
	}

	for _, name := range requested {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if p.isMarker(in, name) {
			markers.add(name)
			continue
		}
		color.add(canonicalLocus(name))
	}
	return color.sorted(), markers.sorted()
}

func (p *Predictor) isMarker(in Parents, name string) bool {
	if _, ok := lookupLocus(name); ok {
		return false
	}
	for _, prof := range []*GenotypeProfile{in.Sire, in.Dam} {
		if prof == nil {
			continue
		}
		if _, ok := findKey(prof.HealthMarkers, name); ok {
			return true
		}
		if _, ok := findKey(prof.Loci, name); ok {
			return false
		}
	}
	_, ok := p.breeds.Condition(name)
	return ok
}

func (p *Predictor) predictLocus(out *OffspringPrediction, in Parents, name string) {
	if reason := missingProfile(in); reason != "" {
		out.Unpredictable = append(out.Unpredictable, Unpredictable{Locus: name, Reason: reason})
		return
	}

	sRaw, sOK := lookupGenotype(in.Sire, name)
	dRaw, dOK := lookupGenotype(in.Dam, name)
	if !sOK || !dOK {
		out.Unpredictable = append(out.Unpredictable, Unpredictable{Locus: name, Reason: missingGenotype(sOK, dOK)})
		return
	}

	l, known := lookupLocus(name)
	order := l.order
	s1, s2, err := parseGenotype(sRaw, order)
	if err != nil {
		out.Unpredictable = append(out.Unpredictable, Unpredictable{Locus: name, Reason: "invalid sire " + err.Error()})
		return
	}
	d1, d2, err := parseGenotype(dRaw, order)
	if err != nil {
		out.Unpredictable = append(out.Unpredictable, Unpredictable{Locus: name, Reason: "invalid dam " + err.Error()})
		return
	}
	s1, s2 = normalize(s1, s2, order)
	d1, d2 = normalize(d1, d2, order)

	dist := cross(gametes(s1, s2), gametes(d1, d2), order)

	lp := LocusPrediction{
		Locus:        name,
		SireGenotype: genotypeKey(s1, s2),
		DamGenotype:  genotypeKey(d1, d2),
		Genotypes:    map[string]float64{},
		Phenotypes:   map[string]float64{},
	}
	if known {
		lp.Trait = l.trait
	}
	for g, prob := range dist {
		lp.Genotypes[g] = percent(prob)

		pheno := g
		if known {
			a1, a2, _ := strings.Cut(g, "/")
			if v, ok := l.phenotype(a1, a2); ok {
				pheno = v
			}
		}
		lp.Phenotypes[pheno] += prob
	}
	for k, v := range lp.Phenotypes {
		lp.Phenotypes[k] = percent(v)
	}

	if known && l.name == "M" {
		if mm := lp.Genotypes["M/M"]; mm > 0 {
			out.Warnings = append(out.Warnings, fmt.Sprintf(
				"%s chance of double merle (M/M) puppies, associated with deafness and eye defects; avoid merle x merle pairings",
				formatPct(mm)))
		}
	}
	out.Loci = append(out.Loci, lp)
}

func (p *Predictor) predictMarker(out *OffspringPrediction, in Parents, marker string) {
	hp := HealthPrediction{Marker: marker}

	sG, sStatus, sReason := p.markerGametes(in.Sire, p.sireBreed(in), marker, "sire")
	dG, dStatus, dReason := p.markerGametes(in.Dam, p.damBreed(in), marker, "dam")
	if sReason != "" || dReason != "" {
		out.Unpredictable = append(out.Unpredictable, Unpredictable{
			Locus:  marker,
			Reason: strings.Join(nonEmpty(sReason, dReason), "; "),
		})
		return
	}

	hp.SireStatus, hp.DamStatus = sStatus, dStatus
	hp.Estimated = in.Sire == nil || in.Dam == nil

	dist := cross(sG, dG, healthOrder)
	hp.Clear = percent(dist["N/N"])
	hp.Carrier = percent(dist["N/x"])
	hp.AtRisk = percent(dist["x/x"])
	hp.BothCarriers = sStatus == StatusCarrier && dStatus == StatusCarrier

	name := p.breeds.DisplayName(marker)
	switch {
	case hp.BothCarriers:
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"Both parents are carriers of %s (%s): %s of puppies expected to be affected",
			name, marker, formatPct(hp.AtRisk)))
	case hp.AtRisk > 0 && hp.Estimated:
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"Estimated %s chance of puppies at risk for %s (%s) based on breed carrier frequency; DNA testing recommended",
			formatPct(hp.AtRisk), name, marker))
	case hp.AtRisk > 0:
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"%s chance of puppies at risk for %s (%s)",
			formatPct(hp.AtRisk), name, marker))
	}

	if hp.Estimated {
		out.IsEstimate = true
	}
	out.HealthMarkers = append(out.HealthMarkers, hp)
}

// markerGametes devuelve la distribución de gametos de un padre para el
// marcador. Sin perfil => frecuencia de portadores de la raza.
func (p *Predictor) markerGametes(prof *GenotypeProfile, breed, marker, role string) (map[string]float64, HealthStatus, string) {
	if prof == nil {
		rate, ok := findKey(p.breeds.CarrierRates(breed), marker)
		if !ok {
			return nil, "", fmt.Sprintf("no DNA profile on file for %s and no breed carrier frequency", role)
		}
		q := math.Max(0, math.Min(1, rate)) / 2
		return map[string]float64{"N": 1 - q, "x": q}, "", ""
	}

	raw, ok := findKey(prof.HealthMarkers, marker)
	if !ok {
		return nil, "", "missing result for " + role
	}
	// acepta "carrier" y la notación de genotipo "N/x"
	status, err := ParseHealthStatus(string(raw))
	if err != nil {
		return nil, "", fmt.Sprintf("invalid %s status %q", role, raw)
	}
	switch status {
	case StatusClear:
		return gametes("N", "N"), status, ""
	case StatusCarrier:
		return gametes("N", "x"), status, ""
	default:
		return gametes("x", "x"), status, ""
	}
}

func (p *Predictor) sireBreed(in Parents) string {
	return firstNonEmpty(in.SireBreed, breedOf(in.Sire), in.DamBreed, breedOf(in.Dam))
}

func (p *Predictor) damBreed(in Parents) string {
	return firstNonEmpty(in.DamBreed, breedOf(in.Dam), in.SireBreed, breedOf(in.Sire))
}

func missingProfile(in Parents) string {
	switch {
	case in.Sire == nil && in.Dam == nil:
		return "no DNA profile on file for either parent"
	case in.Sire == nil:
		return "no DNA profile on file for sire"
	case in.Dam == nil:
		return "no DNA profile on file for dam"
	default:
		return ""
	}
}

func missingGenotype(sireOK, damOK bool) string {
	switch {
	case !sireOK && !damOK:
		return "missing genotype for both parents"
	case !sireOK:
		return "missing genotype for sire"
	default:
		return "missing genotype for dam"
	}
}

func lookupGenotype(prof *GenotypeProfile, name string) (string, bool) {
	if prof == nil {
		return "", false
	}
	v, ok := findKey(prof.Loci, name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// findKey busca exacto y luego sin distinguir mayúsculas.
func findKey[V any](m map[string]V, key string) (V, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(strings.TrimSpace(k), strings.TrimSpace(key)) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

func breedOf(prof *GenotypeProfile) string {
	if prof == nil {
		return ""
	}
	return prof.Breed
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func percent(fraction float64) float64 {
	return math.Round(fraction*100*10000) / 10000
}

func formatPct(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// nameSet deduplica sin distinguir mayúsculas, conservando la primera forma vista.
type nameSet struct {
	seen  map[string]struct{}
	names []string
}

func newNameSet() *nameSet {
	return &nameSet{seen: map[string]struct{}{}}
}

func (s *nameSet) add(name string) {
	k := strings.ToLower(name)
	if _, ok := s.seen[k]; ok || name == "" {
		return
	}
	s.seen[k] = struct{}{}
	s.names = append(s.names, name)
}

func (s *nameSet) sorted() []string {
	out := append([]string(nil), s.names...)
	sort.Strings(out)
	return out
}
