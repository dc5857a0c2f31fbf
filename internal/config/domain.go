package config

import (
	"fmt"
	"os"

	"github.com/EmpoweredVote/LSG-Trends/internal/geo"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/goccy/go-yaml"
)

// Domain holds the lookup tables that vary between data vintages.
//
//	keys:
//	  code: [SEC_Kerala_code, LSG_code, LGD_Code]
//	district_aliases:
//	  Thiruvanathapuram: Thiruvananthapuram
//	fronts:
//	  LDF: ["CPI(M)", CPI]
type Domain struct {
	Keys            geo.KeyAliases      `yaml:"keys"`
	DistrictAliases map[string]string   `yaml:"district_aliases"`
	Fronts          map[string][]string `yaml:"fronts"`
}

// DefaultDomain is used when no CONFIG_FILE is given.
func DefaultDomain() Domain {
	fronts := make(map[string][]string, len(results.DefaultFrontTable))
	for f, parties := range results.DefaultFrontTable {
		fronts[string(f)] = parties
	}
	return Domain{
		Keys:            geo.DefaultKeys,
		DistrictAliases: geo.DefaultDistrictAliases,
		Fronts:          fronts,
	}
}

// LoadFile reads a YAML domain file. Sections left out keep their defaults.
func LoadFile(path string) (Domain, error) {
	d := DefaultDomain()
	if path == "" {
		return d, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("read %s: %w", path, err)
	}

	var file Domain
	if err := yaml.Unmarshal(data, &file); err != nil {
		return d, fmt.Errorf("parse %s: %w", path, err)
	}

	d.Keys = file.Keys.Merge(d.Keys)
	if len(file.DistrictAliases) > 0 {
		d.DistrictAliases = file.DistrictAliases
	}
	if len(file.Fronts) > 0 {
		d.Fronts = file.Fronts
	}
	return d, nil
}

func (d Domain) Classifier() *results.Classifier {
	table := make(map[results.Front][]string, len(d.Fronts))
	for label, parties := range d.Fronts {
		f := results.ParseFront(label)
		table[f] = append(table[f], parties...)
	}
	return results.NewClassifier(table)
}

func (d Domain) Joiner() *geo.Joiner {
	return geo.NewJoiner(d.Keys, geo.NewDistrictNames(d.DistrictAliases))
}

func (d Domain) Districts() *geo.DistrictNames {
	return geo.NewDistrictNames(d.DistrictAliases)
}
