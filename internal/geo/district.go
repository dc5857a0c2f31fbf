package geo

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultDistrictAliases maps known misspellings in boundary files to the
// registry spelling.
var DefaultDistrictAliases = map[string]string{
	"Thiruvanathapuram": "Thiruvananthapuram",
	"Kasargod":          "Kasaragod",
}

// DistrictNames canonicalises free-text district names.
type DistrictNames struct {
	aliases map[string]string
}

func NewDistrictNames(aliases map[string]string) *DistrictNames {
	d := &DistrictNames{aliases: make(map[string]string, len(aliases))}
	for from, to := range aliases {
		d.aliases[titleCase(from)] = to
	}
	return d
}

var defaultDistricts = NewDistrictNames(DefaultDistrictAliases)

// Canonical title-cases name and applies the alias table.
func (d *DistrictNames) Canonical(name string) string {
	t := titleCase(name)
	if to, ok := d.aliases[t]; ok {
		return to
	}
	return t
}

// CanonicalDistrict uses the default alias table.
func CanonicalDistrict(name string) string {
	return defaultDistricts.Canonical(name)
}

func titleCase(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// Casers carry state, so one per call.
	return cases.Title(language.English).String(s)
}
