// Package coi calcula el coeficiente de consanguinidad (Wright, conteo de
// caminos) de la cría hipotética de un sire y una dam a partir de sus árboles.
package coi

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"pedigree-genetics/internal/domain/breeds"
	"pedigree-genetics/internal/domain/pedigree"
)

var ErrInvalidInput = errors.New("invalid input")

type Calculator struct {
	breeds *breeds.Knowledge
	now    func() time.Time
}

func NewCalculator(k *breeds.Knowledge) *Calculator {
	if k == nil {
		k = breeds.Default()
	}
	return &Calculator{
		breeds: k,
		now:    time.Now,
	}
}

// Calculate nunca falla por pedigree incompleto: eso degrada a IsEstimate.
// Recommendations queda vacío; lo completa el Advisory Composer.
func (c *Calculator) Calculate(sire, dam *pedigree.Tree) (Result, error) {
	if err := checkTree(sire, "sire"); err != nil {
		return Result{}, err
	}
	if err := checkTree(dam, "dam"); err != nil {
		return Result{}, err
	}

	gens := min(sire.MaxGenerations, dam.MaxGenerations)
	if gens < 1 {
		gens = max(sire.Depth(), dam.Depth(), 1)
	}

	r := newRun(sire.Root, dam.Root)
	total, tallies := r.coefficient(sire.Root, dam.Root)
	coiPct := clamp(total*100, 0, 100)

	res := Result{
		CoiPercentage:        round(coiPct, 4),
		RiskLevel:            RiskLevelFor(coiPct),
		Recommendations:      []string{},
		KeyAncestors:         keyAncestors(tallies, total),
		AnalysisDate:         c.now().UTC(),
		Generations:          gens,
		CommonAncestorCount:  len(tallies),
		PedigreeCompleteness: round((sire.Completeness()+dam.Completeness())/2, 4),
	}
	if len(tallies) == 0 {
		res.CoiPercentage = 0
		res.RiskLevel = RiskLow
		res.DiversityAssessment = fmt.Sprintf("No shared ancestry detected within %d generations", gens)
	} else {
		res.DiversityAssessment = diversityFor(res.RiskLevel)
	}

	// Falta cualquier padre o abuelo (solo padres si N=1) en alguno de los dos => estimación.
	need := min(2, gens)
	if !sire.CompleteThrough(need) || !dam.CompleteThrough(need) {
		c.applyEstimate(&res, sire.Root.Dog.Breed, dam.Root.Dog.Breed)
	}
	return res, nil
}

func (c *Calculator) applyEstimate(res *Result, sireBreed, damBreed string) {
	res.IsEstimate = true

	prior, sameBreed := c.breeds.AverageCOI(sireBreed, damBreed)
	est := round(clamp(res.CoiPercentage+(1-res.PedigreeCompleteness)*prior, 0, 100), 4)
	res.BreedAverageCOI = &prior
	res.EstimatedCOIPercentage = &est

	known := res.PedigreeCompleteness * 100
	if sameBreed {
		res.EstimateNote = fmt.Sprintf(
			"Pedigree data is incomplete (%.0f%% of ancestors known within %d generations); "+
				"estimated COI blends the known pedigree with the %s breed average of %.2f%%.",
			known, res.Generations, breeds.NormalizeBreed(sireBreed), prior)
		return
	}
	res.EstimateNote = fmt.Sprintf(
		"Pedigree data is incomplete (%.0f%% of ancestors known within %d generations); "+
			"no breed-average prior applies to this pairing, so the real COI may be higher than reported.",
		known, res.Generations)
}

func checkTree(t *pedigree.Tree, role string) error {
	if t == nil || t.Root == nil || strings.TrimSpace(t.Root.Dog.ID) == "" {
		return fmt.Errorf("%w: %s tree has no root dog id", ErrInvalidInput, role)
	}
	return nil
}

func diversityFor(level RiskLevel) string {
	switch level {
	case RiskLow:
		return "Good genetic diversity"
	case RiskLowToMedium:
		return "Moderate genetic diversity"
	case RiskMedium:
		return "Reduced genetic diversity"
	default:
		return "Low genetic diversity"
	}
}

// -------------------------
// Conteo de caminos
// -------------------------

// occurrence es una aparición de un ancestro en un árbol: ids desde la raíz
// (padre/madre de la cría) hasta el ancestro inclusive.
type occurrence struct {
	ids     []string
	viaSire bool // rol del último eslabón
}

func (o occurrence) generation() int { return len(o.ids) }

func (o occurrence) key() string { return strings.Join(o.ids, ">") }

type tally struct {
	id     string
	name   string
	value  float64
	labels map[label]struct{}
}

type run struct {
	shallowest map[string]*pedigree.Node
	f          map[string]float64
	inProgress map[string]bool
}

func newRun(roots ...*pedigree.Node) *run {
	r := &run{
		shallowest: map[string]*pedigree.Node{},
		f:          map[string]float64{},
		inProgress: map[string]bool{},
	}
	// BFS: la primera aparición de cada id es la menos profunda.
	queue := append([]*pedigree.Node(nil), roots...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == nil {
			continue
		}
		if _, seen := r.shallowest[n.Dog.ID]; !seen {
			r.shallowest[n.Dog.ID] = n
		}
		queue = append(queue, n.Sire, n.Dam)
	}
	return r
}

// coefficient devuelve F de la cría de s x d y el detalle por ancestro común.
func (r *run) coefficient(s, d *pedigree.Node) (float64, map[string]*tally) {
	sideS := occurrences(s, true)
	sideD := occurrences(d, false)

	tallies := map[string]*tally{}
	seen := map[string]struct{}{}
	total := 0.0

	for id, sPaths := range sideS {
		dPaths, common := sideD[id]
		if !common {
			continue
		}
		fa := r.inbreeding(id)

		for _, p1 := range sPaths {
			for _, p2 := range dPaths {
				if !disjoint(p1, p2) {
					continue
				}
				k := p1.key() + "|" + p2.key()
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}

				n1, n2 := p1.generation()-1, p2.generation()-1
				v := math.Pow(0.5, float64(n1+n2+1)) * (1 + fa)
				total += v

				t := tallies[id]
				if t == nil {
					t = &tally{id: id, name: r.nameOf(id), labels: map[label]struct{}{}}
					tallies[id] = t
				}
				t.value += v
				t.labels[label{paternal: true, generation: p1.generation(), viaSire: p1.viaSire}] = struct{}{}
				t.labels[label{paternal: false, generation: p2.generation(), viaSire: p2.viaSire}] = struct{}{}
			}
		}
	}
	return total, tallies
}

// inbreeding es F_A: el coeficiente del propio ancestro según su aparición
// menos profunda. 0 si falta alguno de sus padres.
func (r *run) inbreeding(id string) float64 {
	if v, ok := r.f[id]; ok {
		return v
	}
	if r.inProgress[id] {
		return 0
	}
	n := r.shallowest[id]
	if n == nil || n.Sire == nil || n.Dam == nil {
		r.f[id] = 0
		return 0
	}

	r.inProgress[id] = true
	v, _ := r.coefficient(n.Sire, n.Dam)
	delete(r.inProgress, id)

	r.f[id] = v
	return v
}

func (r *run) nameOf(id string) string {
	if n := r.shallowest[id]; n != nil && strings.TrimSpace(n.Dog.Name) != "" {
		return n.Dog.Name
	}
	return id
}

func occurrences(root *pedigree.Node, rootIsSire bool) map[string][]occurrence {
	out := map[string][]occurrence{}
	var path []string

	var walk func(n *pedigree.Node, viaSire bool)
	walk = func(n *pedigree.Node, viaSire bool) {
		if n == nil {
			return
		}
		path = append(path, n.Dog.ID)
		out[n.Dog.ID] = append(out[n.Dog.ID], occurrence{
			ids:     append([]string(nil), path...),
			viaSire: viaSire,
		})
		walk(n.Sire, true)
		walk(n.Dam, false)
		path = path[:len(path)-1]
	}
	walk(root, rootIsSire)
	return out
}

// disjoint: los dos caminos no comparten ningún individuo salvo el ancestro común.
func disjoint(p1, p2 occurrence) bool {
	ids := make(map[string]struct{}, len(p1.ids))
	for _, id := range p1.ids[:len(p1.ids)-1] {
		ids[id] = struct{}{}
	}
	for _, id := range p2.ids[:len(p2.ids)-1] {
		if _, shared := ids[id]; shared {
			return false
		}
	}
	return true
}

func keyAncestors(tallies map[string]*tally, total float64) []KeyAncestor {
	out := make([]KeyAncestor, 0, len(tallies))
	if total <= 0 {
		return out
	}
	for _, t := range tallies {
		out = append(out, KeyAncestor{
			ID:              t.id,
			Name:            t.name,
			Contribution:    round(t.value/total*100, 2),
			PathDescription: describe(t.labels),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Contribution == out[j].Contribution {
			return out[i].Name < out[j].Name
		}
		return out[i].Contribution > out[j].Contribution
	})
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
