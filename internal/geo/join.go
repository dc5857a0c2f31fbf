package geo

import (
	"strings"

	"github.com/EmpoweredVote/LSG-Trends/internal/palette"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/paulmach/orb/geojson"
)

// Properties added to every styled feature.
const (
	PropCode     = "_lbCode"
	PropLabel    = "_label"
	PropDistrict = "_district"
	PropFront    = "_front"
	PropClass    = "_class"
	PropFill     = "_fillColor"
	PropMatched  = "_matched"
)

// Visibility toggles the urban layers on a map.
type Visibility struct {
	ShowMunicipalities bool
	ShowCorporations   bool
}

func ShowAll() Visibility {
	return Visibility{ShowMunicipalities: true, ShowCorporations: true}
}

// Keep reports whether a feature with the given type property stays on the
// map. A blank type is always kept.
func (v Visibility) Keep(typ string) bool {
	t := strings.ToLower(strings.TrimSpace(typ))
	if t == "" {
		return true
	}
	if !v.ShowMunicipalities && strings.Contains(t, "municipality") {
		return false
	}
	if !v.ShowCorporations && strings.Contains(t, "corporation") {
		return false
	}
	return true
}

// StyledCollection is the output of a join with its bookkeeping counts.
// Dropped counts features without geometry; Hidden counts features removed
// by the visibility filter.
type StyledCollection struct {
	Features  *geojson.FeatureCollection
	Matched   int
	Unmatched int
	Dropped   int
	Hidden    int
}

// Joiner resolves feature codes and district names with its alias tables.
type Joiner struct {
	keys      KeyAliases
	districts *DistrictNames
}

func NewJoiner(keys KeyAliases, districts *DistrictNames) *Joiner {
	if districts == nil {
		districts = defaultDistricts
	}
	return &Joiner{keys: keys.Merge(DefaultKeys), districts: districts}
}

var defaultJoiner = NewJoiner(DefaultKeys, nil)

// JoinAndStyle uses the default alias tables.
func JoinAndStyle(fc *geojson.FeatureCollection, summaries []results.LocalBodySummary, vis Visibility) StyledCollection {
	return defaultJoiner.JoinAndStyle(fc, summaries, vis)
}

// JoinAndStyle copies every feature of fc, attaches its resolved code and
// district and the fill of its local body's leading front, then applies vis.
// Features without a code or without a summary are kept with the neutral
// fill. fc is not modified.
func (j *Joiner) JoinAndStyle(fc *geojson.FeatureCollection, summaries []results.LocalBodySummary, vis Visibility) StyledCollection {
	byCode := make(map[string]results.LocalBodySummary, len(summaries))
	for _, s := range summaries {
		if _, dup := byCode[s.LBCode]; !dup {
			byCode[s.LBCode] = s
		}
	}

	out := StyledCollection{Features: geojson.NewFeatureCollection()}
	if fc == nil {
		return out
	}

	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			out.Dropped++
			continue
		}

		props := f.Properties.Clone()
		if props == nil {
			props = geojson.Properties{}
		}

		code := FirstValue(props, j.keys.Code)
		props[PropCode] = code
		props[PropLabel] = FirstValue(props, j.keys.Label)
		if d := FirstValue(props, j.keys.District); d != "" {
			props[PropDistrict] = j.districts.Canonical(d)
		}

		label := ""
		s, ok := byCode[code]
		if code != "" && ok {
			label = s.LeadingFront
			out.Matched++
		} else {
			out.Unmatched++
		}
		class := palette.Classify(label)
		props[PropFront] = label
		props[PropClass] = string(class)
		props[PropFill] = class.Fill()
		props[PropMatched] = ok && code != ""

		if !vis.Keep(FirstValue(props, j.keys.Type)) {
			out.Hidden++
			continue
		}

		nf := geojson.NewFeature(f.Geometry)
		nf.ID = f.ID
		nf.BBox = f.BBox
		nf.Properties = props
		out.Features.Append(nf)
	}
	return out
}

// Codes lists the resolved local-body codes of the features, skipping blanks.
func (j *Joiner) Codes(fc *geojson.FeatureCollection) []string {
	var out []string
	for _, f := range fc.Features {
		if c := FirstValue(f.Properties, j.keys.Code); c != "" {
			out = append(out, c)
		}
	}
	return out
}
