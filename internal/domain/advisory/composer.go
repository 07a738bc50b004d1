// Package advisory traduce el resultado numérico (COI + predicción de crías)
// a recomendaciones legibles. No recalcula nada: solo lee las estructuras.
package advisory

import (
	"fmt"
	"sort"
	"strings"

	"pedigree-genetics/internal/domain/breeds"
	"pedigree-genetics/internal/domain/coi"
	"pedigree-genetics/internal/domain/genetics"
)

// Un ancestro que explica más de esta porción del COI merece mención propia.
const dominantAncestorShare = 50.0

type Composer struct {
	breeds *breeds.Knowledge
}

func NewComposer(k *breeds.Knowledge) *Composer {
	if k == nil {
		k = breeds.Default()
	}
	return &Composer{breeds: k}
}

// Compose arma la lista ordenada: riesgo de consanguinidad, calidad del dato,
// salud, color. pred nil = sin predicción genética disponible.
func (c *Composer) Compose(res coi.Result, pred *genetics.OffspringPrediction) []string {
	var out recommendations

	c.inbreeding(&out, res)
	c.dataQuality(&out, res)
	if pred == nil {
		out.add("Genetic testing recommended for both parents to predict coat colour and health outcomes")
		return out.list()
	}
	c.health(&out, pred)
	c.color(&out, pred)
	return out.list()
}

func (c *Composer) inbreeding(out *recommendations, res coi.Result) {
	switch res.RiskLevel {
	case coi.RiskLow:
		out.add("COI is within a healthy range for this pairing")
	case coi.RiskLowToMedium:
		out.add("COI is moderate; review the key ancestors before proceeding")
	case coi.RiskMedium:
		out.add("Consider outcrossing to reduce the inbreeding coefficient")
		out.add("Monitor litters closely for inherited conditions common in the breed")
	case coi.RiskHigh:
		out.add("High inbreeding risk: consider outcrossing to an unrelated line")
		out.add("Expect reduced litter size and vigour; this pairing is not recommended")
	}

	if len(res.KeyAncestors) > 0 && res.RiskLevel != coi.RiskLow {
		top := res.KeyAncestors[0]
		if top.Contribution > dominantAncestorShare {
			out.add(fmt.Sprintf("%s accounts for %.0f%% of the inbreeding; avoid further line breeding on this ancestor",
				top.Name, top.Contribution))
		}
	}
}

func (c *Composer) dataQuality(out *recommendations, res coi.Result) {
	if !res.IsEstimate {
		return
	}
	out.add("Pedigree data is incomplete; record more generations of ancestry to improve accuracy")

	if res.EstimatedCOIPercentage != nil {
		estimated := coi.RiskLevelFor(*res.EstimatedCOIPercentage)
		if rank(estimated) > rank(res.RiskLevel) {
			out.add(fmt.Sprintf("Breed-average data suggests the real risk may be %s (estimated COI %.2f%%)",
				estimated, *res.EstimatedCOIPercentage))
		}
	}
}

func (c *Composer) health(out *recommendations, pred *genetics.OffspringPrediction) {
	markers := append([]genetics.HealthPrediction(nil), pred.HealthMarkers...)
	// severas primero
	sort.SliceStable(markers, func(i, j int) bool {
		return severityRank(c.severity(markers[i].Marker)) > severityRank(c.severity(markers[j].Marker))
	})

	for _, h := range markers {
		name := c.breeds.DisplayName(h.Marker)
		sev := c.severity(h.Marker)

		switch {
		case h.BothCarriers && sev == breeds.SeveritySevere:
			out.add(fmt.Sprintf("Not recommended: both parents carry %s, a severe condition (%.0f%% of puppies expected affected)", name, h.AtRisk))
		case h.BothCarriers:
			out.add(fmt.Sprintf("Both parents carry %s; genetic testing of puppies recommended before placement", name))
		case h.AtRisk > 0 && h.Estimated:
			out.add(fmt.Sprintf("Genetic testing recommended for %s before breeding (breed carrier frequency suggests %.2f%% risk)", name, h.AtRisk))
		case h.AtRisk > 0:
			out.add(fmt.Sprintf("Test puppies for %s: %.0f%% may be affected", name, h.AtRisk))
		case h.Carrier > 0 && !h.Estimated && sev == breeds.SeveritySevere:
			out.add(fmt.Sprintf("Some puppies may carry %s; test before using them for breeding", name))
		}
	}

	missing := make([]string, 0, len(pred.Unpredictable))
	for _, u := range pred.Unpredictable {
		missing = append(missing, u.Locus)
	}
	if len(missing) > 0 {
		out.add("Genetic testing recommended for " + strings.Join(missing, ", ") + " to complete the prediction")
	}
}

func (c *Composer) color(out *recommendations, pred *genetics.OffspringPrediction) {
	for _, l := range pred.Loci {
		if l.Locus == "M" && l.Genotypes["M/M"] > 0 {
			out.add("Avoid merle x merle pairings: double merle puppies are at risk of deafness and blindness")
		}
	}
}

func (c *Composer) severity(marker string) breeds.Severity {
	cond, ok := c.breeds.Condition(marker)
	if !ok {
		return breeds.SeverityModerate
	}
	return cond.Severity
}

func severityRank(s breeds.Severity) int {
	switch s {
	case breeds.SeveritySevere:
		return 2
	case breeds.SeverityModerate:
		return 1
	default:
		return 0
	}
}

func rank(l coi.RiskLevel) int {
	switch l {
	case coi.RiskLow:
		return 0
	case coi.RiskLowToMedium:
		return 1
	case coi.RiskMedium:
		return 2
	default:
		return 3
	}
}

// recommendations conserva el orden de inserción y descarta repetidos.
type recommendations struct {
	seen  map[string]struct{}
	items []string
}

func (r *recommendations) add(s string) {
	if r.seen == nil {
		r.seen = map[string]struct{}{}
	}
	if _, ok := r.seen[s]; ok {
		return
	}
	r.seen[s] = struct{}{}
	r.items = append(r.items, s)
}

func (r *recommendations) list() []string {
	if r.items == nil {
		return []string{}
	}
	return r.items
}
