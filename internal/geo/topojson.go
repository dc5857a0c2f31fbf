// Package geo turns boundary files into styled feature collections keyed by
// local-body code.
package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	ErrInvalidPayload    = errors.New("invalid geographic payload")
	ErrNoTopologyObjects = errors.New("topology has no objects")
)

// Decode reads a GeoJSON FeatureCollection, a single Feature or a TopoJSON
// Topology. A topology is flattened from its first object. Features that
// fail to decode are skipped.
func Decode(data []byte) (*geojson.FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	switch head.Type {
	case "Topology":
		return decodeTopology(data)
	case "FeatureCollection":
		return decodeFeatureCollection(data)
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		fc := geojson.NewFeatureCollection()
		return fc.Append(f), nil
	}
	return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidPayload, head.Type)
}

func decodeFeatureCollection(data []byte) (*geojson.FeatureCollection, error) {
	var doc struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	fc := geojson.NewFeatureCollection()
	for _, raw := range doc.Features {
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			continue
		}
		fc.Append(f)
	}
	return fc, nil
}

type topology struct {
	Transform *struct {
		Scale     [2]float64 `json:"scale"`
		Translate [2]float64 `json:"translate"`
	} `json:"transform"`
	Arcs    [][][]float64   `json:"arcs"`
	Objects json.RawMessage `json:"objects"`
}

type topoGeometry struct {
	Type        string          `json:"type"`
	ID          any             `json:"id"`
	Properties  map[string]any  `json:"properties"`
	Arcs        json.RawMessage `json:"arcs"`
	Coordinates json.RawMessage `json:"coordinates"`
	Geometries  []topoGeometry  `json:"geometries"`
}

func decodeTopology(data []byte) (*geojson.FeatureCollection, error) {
	var topo topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	raw, err := firstObject(topo.Objects)
	if err != nil {
		return nil, err
	}
	var obj topoGeometry
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: object: %v", ErrInvalidPayload, err)
	}

	d := decoder{topo: &topo}
	fc := geojson.NewFeatureCollection()
	if obj.Type == "GeometryCollection" {
		for _, g := range obj.Geometries {
			fc.Append(d.feature(g))
		}
		return fc, nil
	}
	return fc.Append(d.feature(obj)), nil
}

// firstObject returns the first member of the objects map in document order.
func firstObject(objects json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(objects)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrNoTopologyObjects
	}
	dec := json.NewDecoder(bytes.NewReader(objects))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: objects: %v", ErrInvalidPayload, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: objects is not an object", ErrInvalidPayload)
	}
	if !dec.More() {
		return nil, ErrNoTopologyObjects
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: objects: %v", ErrInvalidPayload, err)
	}
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: objects: %v", ErrInvalidPayload, err)
	}
	return raw, nil
}

type decoder struct {
	topo *topology
}

// feature converts one topology geometry. A geometry that cannot be decoded
// yields a feature without geometry.
func (d decoder) feature(g topoGeometry) *geojson.Feature {
	geom, err := d.geometry(g)
	if err != nil {
		geom = nil
	}
	f := geojson.NewFeature(geom)
	if g.ID != nil {
		f.ID = g.ID
	}
	if g.Properties != nil {
		f.Properties = geojson.Properties(g.Properties)
	}
	return f
}

func (d decoder) geometry(g topoGeometry) (orb.Geometry, error) {
	switch g.Type {
	case "Polygon":
		var arcs [][]int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, err
		}
		return d.polygon(arcs)
	case "MultiPolygon":
		var arcs [][][]int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, err
		}
		mp := make(orb.MultiPolygon, 0, len(arcs))
		for _, p := range arcs {
			poly, err := d.polygon(p)
			if err != nil {
				return nil, err
			}
			mp = append(mp, poly)
		}
		return mp, nil
	case "LineString":
		var arcs []int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, err
		}
		pts, err := d.line(arcs)
		return orb.LineString(pts), err
	case "MultiLineString":
		var arcs [][]int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, err
		}
		ml := make(orb.MultiLineString, 0, len(arcs))
		for _, a := range arcs {
			pts, err := d.line(a)
			if err != nil {
				return nil, err
			}
			ml = append(ml, orb.LineString(pts))
		}
		return ml, nil
	case "Point":
		var c []float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, err
		}
		return d.position(c)
	case "MultiPoint":
		var cs [][]float64
		if err := json.Unmarshal(g.Coordinates, &cs); err != nil {
			return nil, err
		}
		mp := make(orb.MultiPoint, 0, len(cs))
		for _, c := range cs {
			p, err := d.position(c)
			if err != nil {
				return nil, err
			}
			mp = append(mp, p)
		}
		return mp, nil
	case "GeometryCollection":
		col := make(orb.Collection, 0, len(g.Geometries))
		for _, sub := range g.Geometries {
			geom, err := d.geometry(sub)
			if err != nil {
				return nil, err
			}
			col = append(col, geom)
		}
		return col, nil
	}
	return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
}

func (d decoder) polygon(rings [][]int) (orb.Polygon, error) {
	poly := make(orb.Polygon, 0, len(rings))
	for _, r := range rings {
		pts, err := d.line(r)
		if err != nil {
			return nil, err
		}
		for len(pts) > 0 && len(pts) < 4 {
			pts = append(pts, pts[0])
		}
		poly = append(poly, orb.Ring(pts))
	}
	return poly, nil
}

// line stitches arcs end to end. Consecutive arcs share their joining point,
// and a negative index ~i walks arc i backwards.
func (d decoder) line(indexes []int) ([]orb.Point, error) {
	var pts []orb.Point
	for _, i := range indexes {
		idx, reverse := i, false
		if i < 0 {
			idx, reverse = ^i, true
		}
		if idx >= len(d.topo.Arcs) {
			return nil, fmt.Errorf("arc %d out of range", idx)
		}
		arc, err := d.arc(d.topo.Arcs[idx])
		if err != nil {
			return nil, err
		}
		if reverse {
			slices.Reverse(arc)
		}
		if len(pts) > 0 && len(arc) > 0 {
			arc = arc[1:]
		}
		pts = append(pts, arc...)
	}
	return pts, nil
}

// arc decodes one arc, undoing delta encoding when the topology is quantized.
func (d decoder) arc(raw [][]float64) ([]orb.Point, error) {
	out := make([]orb.Point, 0, len(raw))
	var x, y float64
	for _, c := range raw {
		if len(c) < 2 {
			return nil, errors.New("short arc position")
		}
		if t := d.topo.Transform; t != nil {
			x += c[0]
			y += c[1]
			out = append(out, orb.Point{x*t.Scale[0] + t.Translate[0], y*t.Scale[1] + t.Translate[1]})
			continue
		}
		out = append(out, orb.Point{c[0], c[1]})
	}
	return out, nil
}

func (d decoder) position(c []float64) (orb.Point, error) {
	if len(c) < 2 {
		return orb.Point{}, errors.New("short position")
	}
	if t := d.topo.Transform; t != nil {
		return orb.Point{c[0]*t.Scale[0] + t.Translate[0], c[1]*t.Scale[1] + t.Translate[1]}, nil
	}
	return orb.Point{c[0], c[1]}, nil
}
