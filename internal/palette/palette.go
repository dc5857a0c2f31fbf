// Package palette is the one place fronts are turned into colours. Maps,
// ward drawings and legends all read from it.
package palette

import "github.com/EmpoweredVote/LSG-Trends/internal/results"

// Classification is the style bucket of a local body on a map.
type Classification string

const (
	ClassLDF     Classification = "LDF"
	ClassUDF     Classification = "UDF"
	ClassNDA     Classification = "NDA"
	ClassNeutral Classification = "Neutral"
)

const (
	NeutralFill = "#94a3b8"
	HungWard    = "#7e22ce"
	EmptyWard   = "#e2e8f0"
)

type shades struct {
	solid string
	light string
}

var fronts = map[results.Front]shades{
	results.FrontLDF: {solid: "#ef4444", light: "#fca5a5"},
	results.FrontUDF: {solid: "#2768F5", light: "#93c5fd"},
	results.FrontNDA: {solid: "#f97316", light: "#fdba74"},
}

var otherWard = shades{solid: "#64748b", light: "#cbd5e1"}

// Classify buckets a local body's leading-front label. Hung, IND, N/A and
// anything unexpected are neutral.
func Classify(label string) Classification {
	switch label {
	case string(results.FrontLDF):
		return ClassLDF
	case string(results.FrontUDF):
		return ClassUDF
	case string(results.FrontNDA):
		return ClassNDA
	}
	return ClassNeutral
}

// Fill is the map colour of a classification.
func (c Classification) Fill() string {
	switch c {
	case ClassLDF, ClassUDF, ClassNDA:
		return fronts[results.Front(c)].solid
	}
	return NeutralFill
}

// BodyFill is the map colour for a local body's leading-front label.
func BodyFill(label string) string {
	return Classify(label).Fill()
}

// WardFill colours one ward: purple when tied, the solid front colour for a
// winner, a light shade for a leader, and slate when there is no result.
func WardFill(r results.WardResult) string {
	switch {
	case r.IsHung:
		return HungWard
	case r.Winner != nil:
		return wardShades(r.Winner.Front).solid
	case r.Leading != nil:
		return wardShades(r.Leading.Front).light
	}
	return EmptyWard
}

func wardShades(f results.Front) shades {
	if s, ok := fronts[f]; ok {
		return s
	}
	return otherWard
}

// LegendEntry is one swatch of the map legend.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend lists the body-level swatches in display order.
func Legend() []LegendEntry {
	return []LegendEntry{
		{Label: "LDF", Color: ClassLDF.Fill()},
		{Label: "UDF", Color: ClassUDF.Fill()},
		{Label: "NDA", Color: ClassNDA.Fill()},
		{Label: "Others / Hung", Color: NeutralFill},
	}
}
