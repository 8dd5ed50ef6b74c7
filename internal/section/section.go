// Package section defines the seven UTBK subtests and their grouping
// into the TPS and Literasi categories.
package section

import "fmt"

// Section is one of the seven fixed UTBK subtest codes.
type Section string

const (
	PU  Section = "PU"  // Penalaran Umum
	PPU Section = "PPU" // Pengetahuan dan Pemahaman Umum
	PBM Section = "PBM" // Pemahaman Bacaan dan Menulis
	PK  Section = "PK"  // Pengetahuan Kuantitatif
	LBI Section = "LBI" // Literasi Bahasa Indonesia
	LBE Section = "LBE" // Literasi Bahasa Inggris
	PM  Section = "PM"  // Penalaran Matematika
)

// Category groups sections into the two UTBK test categories.
type Category string

const (
	CategoryTPS      Category = "TPS"
	CategoryLiterasi Category = "Literasi"
)

// All lists every section in display order.
var All = []Section{PU, PPU, PBM, PK, LBI, LBE, PM}

var names = map[Section]string{
	PU:  "Penalaran Umum",
	PPU: "Pengetahuan dan Pemahaman Umum",
	PBM: "Pemahaman Bacaan dan Menulis",
	PK:  "Pengetahuan Kuantitatif",
	LBI: "Literasi Bahasa Indonesia",
	LBE: "Literasi Bahasa Inggris",
	PM:  "Penalaran Matematika",
}

// Name returns the human-readable subtest name, or the raw code if unknown.
func (s Section) Name() string {
	if n, ok := names[s]; ok {
		return n
	}
	return string(s)
}

// Category returns the test category the section belongs to.
func (s Section) Category() Category {
	switch s {
	case LBI, LBE, PM:
		return CategoryLiterasi
	default:
		return CategoryTPS
	}
}

// Valid reports whether s is one of the seven known section codes.
func (s Section) Valid() bool {
	_, ok := names[s]
	return ok
}

// Parse converts a raw code into a Section, rejecting unknown codes.
func Parse(code string) (Section, error) {
	s := Section(code)
	if !s.Valid() {
		return "", fmt.Errorf("unknown section code %q", code)
	}
	return s, nil
}
