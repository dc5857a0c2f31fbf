package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// KeyAliases lists, per attribute, the property names boundary files use
// for it. Earlier names win.
type KeyAliases struct {
	Code     []string `yaml:"code"`
	Label    []string `yaml:"label"`
	District []string `yaml:"district"`
	Type     []string `yaml:"type"`
}

var DefaultKeys = KeyAliases{
	Code:     []string{"SEC_Kerala_code", "LSG_code", "LGD_Code"},
	Label:    []string{"English Label", "LSGI_NAME", "LSGD"},
	District: []string{"District", "DISTRICT", "District_N"},
	Type:     []string{"Lsgd_Type", "lsgd_type", "LB_Type"},
}

// Merge fills empty lists from def.
func (k KeyAliases) Merge(def KeyAliases) KeyAliases {
	if len(k.Code) == 0 {
		k.Code = def.Code
	}
	if len(k.Label) == 0 {
		k.Label = def.Label
	}
	if len(k.District) == 0 {
		k.District = def.District
	}
	if len(k.Type) == 0 {
		k.Type = def.Type
	}
	return k
}

// FirstValue returns the first non-empty value among keys, as a string.
// Values that are blank after trimming count as absent.
func FirstValue(props geojson.Properties, keys []string) string {
	for _, k := range keys {
		if s := propString(props[k]); s != "" {
			return s
		}
	}
	return ""
}

func propString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
