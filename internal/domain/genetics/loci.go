package genetics

import (
	"fmt"
	"sort"
	"strings"
)

// locus describe un gen de color: orden de dominancia (mayor primero) y
// tabla genotipo => fenotipo.
type locus struct {
	name      string
	trait     string
	order     []string
	phenotype func(a1, a2 string) (string, bool)
}

// topAllele: fenotipo del alelo más dominante presente.
func topAllele(table map[string]string) func(a1, a2 string) (string, bool) {
	return func(a1, a2 string) (string, bool) {
		// a1 ya viene normalizado como el más dominante
		p, ok := table[a1]
		return p, ok
	}
}

// byCount: dominancia incompleta, según cuántas copias del alelo hay.
func byCount(allele string, zero, one, two string) func(a1, a2 string) (string, bool) {
	return func(a1, a2 string) (string, bool) {
		n := 0
		for _, a := range []string{a1, a2} {
			if a == allele {
				n++
			}
		}
		switch n {
		case 0:
			return zero, true
		case 1:
			return one, true
		default:
			return two, true
		}
	}
}

var colorLoci = map[string]locus{
	"A": {
		name:  "A",
		trait: "Agouti pattern",
		order: []string{"Ay", "aw", "at", "a"},
		phenotype: topAllele(map[string]string{
			"Ay": "Sable/Fawn",
			"aw": "Wild sable",
			"at": "Tan points",
			"a":  "Recessive black",
		}),
	},
	"B": {
		name:  "B",
		trait: "Brown",
		order: []string{"B", "b"},
		phenotype: topAllele(map[string]string{
			"B": "Black pigment",
			"b": "Brown (liver) pigment",
		}),
	},
	"D": {
		name:  "D",
		trait: "Dilution",
		order: []string{"D", "d"},
		phenotype: topAllele(map[string]string{
			"D": "Non-dilute",
			"d": "Dilute",
		}),
	},
	"E": {
		name:  "E",
		trait: "Extension",
		order: []string{"Em", "E", "e"},
		phenotype: topAllele(map[string]string{
			"Em": "Melanistic mask",
			"E":  "Normal extension",
			"e":  "Recessive red/yellow",
		}),
	},
	"K": {
		name:  "K",
		trait: "Dominant black",
		order: []string{"KB", "kbr", "ky"},
		phenotype: topAllele(map[string]string{
			"KB":  "Solid black",
			"kbr": "Brindle",
			"ky":  "Agouti pattern expressed",
		}),
	},
	"M": {
		name:      "M",
		trait:     "Merle",
		order:     []string{"M", "m"},
		phenotype: byCount("M", "Non-merle", "Merle", "Double merle"),
	},
	"S": {
		name:      "S",
		trait:     "White spotting",
		order:     []string{"S", "sp"},
		phenotype: byCount("sp", "Solid", "Solid (piebald carrier)", "Piebald"),
	},
}

// Orden de presentación de los loci conocidos.
var locusOrder = []string{"A", "B", "D", "E", "K", "M", "S"}

// healthOrder: alelo normal N domina al alelo mutado x.
var healthOrder = []string{"N", "x"}

func lookupLocus(name string) (locus, bool) {
	l, ok := colorLoci[strings.ToUpper(strings.TrimSpace(name))]
	return l, ok
}

// canonicalLocus devuelve "A" para "a"; loci desconocidos quedan tal cual.
func canonicalLocus(name string) string {
	if l, ok := lookupLocus(name); ok {
		return l.name
	}
	return strings.TrimSpace(name)
}

// parseGenotype lee "a1/a2" y normaliza cada alelo contra el orden del locus.
func parseGenotype(raw string, order []string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("genotype %q must look like a/b", raw)
	}
	a1 := canonicalAllele(parts[0], order)
	a2 := canonicalAllele(parts[1], order)
	if a1 == "" || a2 == "" {
		return "", "", fmt.Errorf("genotype %q has an empty allele", raw)
	}
	return a1, a2, nil
}

// canonicalAllele: match exacto primero (B vs b importan), luego sin
// mayúsculas si es único ("ay" => "Ay").
func canonicalAllele(a string, order []string) string {
	a = strings.TrimSpace(a)
	for _, o := range order {
		if o == a {
			return o
		}
	}
	match := ""
	for _, o := range order {
		if strings.EqualFold(o, a) {
			if match != "" {
				return a
			}
			match = o
		}
	}
	if match != "" {
		return match
	}
	return a
}

// normalize ordena el par por dominancia: "d/D" => "D/d".
// Alelos fuera de la tabla van al final, alfabéticamente.
func normalize(a1, a2 string, order []string) (string, string) {
	rank := func(a string) int {
		for i, o := range order {
			if o == a {
				return i
			}
		}
		return len(order)
	}
	r1, r2 := rank(a1), rank(a2)
	if r1 > r2 || (r1 == r2 && a1 > a2) {
		return a2, a1
	}
	return a1, a2
}

func genotypeKey(a1, a2 string) string {
	return a1 + "/" + a2
}

// gametes: cada alelo con probabilidad 1/2.
func gametes(a1, a2 string) map[string]float64 {
	if a1 == a2 {
		return map[string]float64{a1: 1}
	}
	return map[string]float64{a1: 0.5, a2: 0.5}
}

// cross combina gametos y agrupa genotipos idénticos (en fracción 0..1).
func cross(sire, dam map[string]float64, order []string) map[string]float64 {
	out := map[string]float64{}
	for g1, p1 := range sire {
		for g2, p2 := range dam {
			a1, a2 := normalize(g1, g2, order)
			out[genotypeKey(a1, a2)] += p1 * p2
		}
	}
	return out
}

func sortedLoci(names []string) []string {
	rank := map[string]int{}
	for i, n := range locusOrder {
		rank[n] = i
	}
	out := append([]string(nil), names...)
	sort.Slice(out, func(i, j int) bool {
		ri, iok := rank[out[i]]
		rj, jok := rank[out[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return out[i] < out[j]
		}
	})
	return out
}
