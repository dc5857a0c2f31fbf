// Package view models which part of the hierarchy is being looked at and
// where its boundary data lives.
package view

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
)

var ErrUnknownTab = errors.New("unknown tier tab")

// Tab selects the panchayat tier drawn on a map.
type Tab string

const (
	TabDistrict Tab = "district"
	TabBlock    Tab = "block"
	TabGrama    Tab = "grama"
)

var Tabs = []Tab{TabDistrict, TabBlock, TabGrama}

func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case TabDistrict, TabBlock, TabGrama:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// UnitType is the panchayat tier the tab draws.
func (t Tab) UnitType() registry.UnitType {
	switch t {
	case TabDistrict:
		return registry.TypeDistrictPanchayat
	case TabBlock:
		return registry.TypeBlockPanchayat
	}
	return registry.TypeGramaPanchayat
}

func (t Tab) stateFile() string {
	switch t {
	case TabDistrict:
		return "districts.json"
	case TabBlock:
		return "block-panchayats.json"
	}
	return "grama-panchayats.json"
}

// Mode is one of StateView, DistrictView or LocalBodyView.
type Mode interface {
	// SourcePath is the boundary file for the view, relative to the data root.
	SourcePath(state string) string
	// Key identifies the view in caches and logs.
	Key() string
	isMode()
}

type StateView struct {
	Tab Tab
}

type DistrictView struct {
	District string
	Tab      Tab
}

// LocalBodyView is a single local body drawn ward by ward.
type LocalBodyView struct {
	District string
	LBCode   string
}

func (StateView) isMode()     {}
func (DistrictView) isMode()  {}
func (LocalBodyView) isMode() {}

func (v StateView) SourcePath(state string) string {
	return path.Join("topojson", state, v.Tab.stateFile())
}

func (v DistrictView) SourcePath(state string) string {
	return path.Join("topojson", state, "district_maps", v.District+"_"+string(v.Tab)+".json")
}

func (v LocalBodyView) SourcePath(state string) string {
	return path.Join("geojson", state, "district_wards", v.District, v.LBCode+".svg")
}

func (v StateView) Key() string     { return "state/" + string(v.Tab) }
func (v DistrictView) Key() string  { return "district/" + v.District + "/" + string(v.Tab) }
func (v LocalBodyView) Key() string { return "lb/" + v.LBCode }

// OrderedTypes is the order tiers are presented in for a tab: the tab's own
// panchayat tier first, then the urban bodies that sit beside it.
func OrderedTypes(t Tab) []registry.UnitType {
	return []registry.UnitType{t.UnitType(), registry.TypeCorporation, registry.TypeMunicipality}
}
