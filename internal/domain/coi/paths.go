package coi

import (
	"fmt"
	"sort"
	"strings"
)

// label es la posición de un ancestro vista desde la cría.
// generation 1 = padre/madre, 2 = abuelo/abuela, ...
type label struct {
	paternal   bool
	generation int
	viaSire    bool
}

func (l label) String() string {
	role := "dam"
	if l.viaSire {
		role = "sire"
	}

	var pos string
	switch {
	case l.generation <= 1:
		return role
	case l.generation == 2:
		pos = "grand" + role
	case l.generation == 3:
		pos = "great-grand" + role
	case l.generation == 4:
		pos = "great-great-grand" + role
	default:
		pos = fmt.Sprintf("%dx great-grand%s", l.generation-2, role)
	}

	if l.paternal {
		return "paternal " + pos
	}
	return "maternal " + pos
}

// describe arma "appears as paternal grandsire and maternal great-grandsire".
// Primero el lado paterno, luego el materno, de la generación más cercana a la más lejana.
func describe(labels map[label]struct{}) string {
	ls := make([]label, 0, len(labels))
	for l := range labels {
		ls = append(ls, l)
	}
	sort.Slice(ls, func(i, j int) bool {
		if ls[i].paternal != ls[j].paternal {
			return ls[i].paternal
		}
		if ls[i].generation != ls[j].generation {
			return ls[i].generation < ls[j].generation
		}
		return ls[i].viaSire && !ls[j].viaSire
	})

	parts := make([]string, 0, len(ls))
	seen := map[string]struct{}{}
	for _, l := range ls {
		s := l.String()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		parts = append(parts, s)
	}
	return "appears as " + joinAnd(parts)
}

func joinAnd(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}
