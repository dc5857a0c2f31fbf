package registry

import "strings"

// UnitType is the tier of a local self-government body.
type UnitType string

const (
	TypeCorporation       UnitType = "Corporation"
	TypeMunicipality      UnitType = "Municipality"
	TypeGramaPanchayat    UnitType = "GramaPanchayat"
	TypeBlockPanchayat    UnitType = "BlockPanchayat"
	TypeDistrictPanchayat UnitType = "DistrictPanchayat"
)

// AllTypes lists every unit type, urban tiers first.
var AllTypes = []UnitType{
	TypeCorporation,
	TypeMunicipality,
	TypeGramaPanchayat,
	TypeBlockPanchayat,
	TypeDistrictPanchayat,
}

// ParseUnitType accepts the registry's human labels ("Municipal Corporation",
// "Grama Panchayat") as well as the compact names.
func ParseUnitType(s string) (UnitType, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch key {
	case "municipalcorporation", "corporation":
		return TypeCorporation, true
	case "municipality":
		return TypeMunicipality, true
	case "gramapanchayat":
		return TypeGramaPanchayat, true
	case "blockpanchayat":
		return TypeBlockPanchayat, true
	case "districtpanchayat":
		return TypeDistrictPanchayat, true
	}
	return "", false
}

// TypeFromCode infers the type from the election commission's code prefix.
func TypeFromCode(code string) (UnitType, bool) {
	if code == "" {
		return "", false
	}
	switch code[0] {
	case 'C':
		return TypeCorporation, true
	case 'M':
		return TypeMunicipality, true
	case 'G':
		return TypeGramaPanchayat, true
	case 'B':
		return TypeBlockPanchayat, true
	case 'D':
		return TypeDistrictPanchayat, true
	}
	return "", false
}

// Label is the registry's display name for the type.
func (t UnitType) Label() string {
	switch t {
	case TypeCorporation:
		return "Municipal Corporation"
	case TypeGramaPanchayat:
		return "Grama Panchayat"
	case TypeBlockPanchayat:
		return "Block Panchayat"
	case TypeDistrictPanchayat:
		return "District Panchayat"
	}
	return string(t)
}

func (t UnitType) Plural() string {
	switch t {
	case TypeCorporation:
		return "Corporations"
	case TypeMunicipality:
		return "Municipalities"
	case TypeGramaPanchayat:
		return "Grama Panchayats"
	case TypeBlockPanchayat:
		return "Block Panchayats"
	case TypeDistrictPanchayat:
		return "District Panchayats"
	}
	return string(t)
}

// IsBaseTier reports whether voters and polling stations of the type are
// counted directly. Block and district panchayats overlay grama panchayats.
func (t UnitType) IsBaseTier() bool {
	return t == TypeCorporation || t == TypeMunicipality || t == TypeGramaPanchayat
}

// AdministrativeUnit is a local body from the registry snapshot.
type AdministrativeUnit struct {
	Code         string   `gorm:"primaryKey;size:20;column:code" db:"code" json:"lb_code"`
	Name         string   `gorm:"column:name" db:"name" json:"lb_name_english"`
	Type         UnitType `gorm:"index;size:32;column:type" db:"type" json:"lb_type"`
	DistrictName string   `gorm:"index;column:district_name" db:"district_name" json:"district_name"`
	WardCount    int      `gorm:"column:ward_count" db:"ward_count" json:"total_wards"`
}

func (AdministrativeUnit) TableName() string {
	return "registry.local_bodies"
}

// WardMeta is per-ward voter metadata. It is used for voter totals and to
// cross-check ward counts, never to decide results.
type WardMeta struct {
	Code        string `gorm:"primaryKey;size:20;column:code" db:"code" json:"ward_code"`
	Name        string `gorm:"column:name" db:"name" json:"ward_name_english"`
	Number      int    `gorm:"column:number" db:"number" json:"ward_no"`
	LBCode      string `gorm:"index;size:20;column:lb_code" db:"lb_code" json:"lb_code"`
	TotalVoters int    `gorm:"column:total_voters" db:"total_voters" json:"total_voters"`
}

func (WardMeta) TableName() string {
	return "registry.wards"
}

type PollingStation struct {
	ID       uint   `gorm:"primaryKey;column:id" db:"-" json:"-"`
	Number   int    `gorm:"column:number" db:"number" json:"ps_no"`
	Name     string `gorm:"column:name" db:"name" json:"ps_name"`
	WardCode string `gorm:"index;size:20;column:ward_code" db:"ward_code" json:"ward_code"`
	LBCode   string `gorm:"index;size:20;column:lb_code" db:"lb_code" json:"lb_code"`
}

func (PollingStation) TableName() string {
	return "registry.polling_stations"
}
