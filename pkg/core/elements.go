package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Element stores per-element data used for formulas and weights.
type Element struct {
	Symbol string
	Number int
	Mass   float64 // standard atomic weight
}

// Standard atomic weights of the elements found in organic macrocycles
var elements = map[string]Element{
	"H":  {"H", 1, 1.008},
	"D":  {"D", 1, 2.014},
	"T":  {"T", 1, 3.016},
	"B":  {"B", 5, 10.81},
	"C":  {"C", 6, 12.011},
	"N":  {"N", 7, 14.007},
	"O":  {"O", 8, 15.999},
	"F":  {"F", 9, 18.998},
	"Na": {"Na", 11, 22.990},
	"Mg": {"Mg", 12, 24.305},
	"Si": {"Si", 14, 28.085},
	"P":  {"P", 15, 30.974},
	"S":  {"S", 16, 32.06},
	"Cl": {"Cl", 17, 35.45},
	"K":  {"K", 19, 39.098},
	"Ca": {"Ca", 20, 40.078},
	"Fe": {"Fe", 26, 55.845},
	"Cu": {"Cu", 29, 63.546},
	"Zn": {"Zn", 30, 65.38},
	"Se": {"Se", 34, 78.971},
	"Br": {"Br", 35, 79.904},
	"I":  {"I", 53, 126.904},
}

// LookupElement returns the element for a symbol. Symbols are matched
// case-insensitively ("CL", "cl" and "Cl" are the same element).
func LookupElement(symbol string) (Element, bool) {
	el, ok := elements[NormalizeSymbol(symbol)]
	return el, ok
}

// NormalizeSymbol capitalises an element symbol the usual way.
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return ""
	}
	return strings.ToUpper(symbol[:1]) + strings.ToLower(symbol[1:])
}

// MolecularWeight returns the average molecular weight in g/mol. Unknown
// elements contribute nothing.
func (m *Molecule) MolecularWeight() float64 {
	mass := 0.0
	for _, at := range m.Atoms {
		if el, ok := LookupElement(at.Symbol); ok {
			mass += el.Mass
		}
	}
	return mass
}

// Formula returns the molecular formula in Hill order: C first, then H,
// then the remaining elements alphabetically. Without carbon every element
// is alphabetical.
func (m *Molecule) Formula() string {
	counts := make(map[string]int)
	for _, at := range m.Atoms {
		sym := NormalizeSymbol(at.Symbol)
		if sym == "D" || sym == "T" {
			sym = "H"
		}
		counts[sym]++
	}

	var order []string
	_, hasC := counts["C"]
	if hasC {
		order = append(order, "C")
		if _, ok := counts["H"]; ok {
			order = append(order, "H")
		}
	}
	var rest []string
	for sym := range counts {
		if hasC && (sym == "C" || sym == "H") {
			continue
		}
		rest = append(rest, sym)
	}
	sort.Strings(rest)
	order = append(order, rest...)

	var b strings.Builder
	for _, sym := range order {
		b.WriteString(sym)
		if n := counts[sym]; n > 1 {
			fmt.Fprintf(&b, "%d", n)
		}
	}
	if q := m.NetCharge(); q != 0 {
		switch {
		case q == 1:
			b.WriteString("+")
		case q == -1:
			b.WriteString("-")
		case q > 0:
			fmt.Fprintf(&b, "%d+", q)
		default:
			fmt.Fprintf(&b, "%d-", -q)
		}
	}
	return b.String()
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
