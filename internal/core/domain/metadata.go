package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Unknown is the display value for missing labels.
const Unknown = "Unknown"

// RecordType tags the metadata variant of an indexed record.
type RecordType string

// Known record types. The set is closed: anything else is rejected on decode.
const (
	// RecordTypeCropProduction is a district-level crop production row.
	RecordTypeCropProduction RecordType = "crop_production"

	// RecordTypeRainfall is a sub-divisional monthly rainfall row.
	RecordTypeRainfall RecordType = "rainfall"
)

// Source labels attached to each record type.
const (
	SourceMinistryOfAgriculture = "data.gov.in - Ministry of Agriculture"
	SourceIMD                   = "data.gov.in - India Meteorological Department"
)

// IsValid returns true if the record type is recognised.
func (t RecordType) IsValid() bool {
	switch t {
	case RecordTypeCropProduction, RecordTypeRainfall:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t RecordType) String() string {
	return string(t)
}

// AllRecordTypes returns every known record type.
func AllRecordTypes() []RecordType {
	return []RecordType{RecordTypeCropProduction, RecordTypeRainfall}
}

// CropProduction holds the fields specific to crop production records.
type CropProduction struct {
	State                 string
	District              string
	Crop                  string
	Season                string
	Year                  int
	AreaHectares          float64
	ProductionTonnes      float64
	YieldTonnesPerHectare float64
}

// Rainfall holds the fields specific to rainfall records.
type Rainfall struct {
	Subdivision string
	Year        int
	Annual      float64
	// Monthly is January..December in millimetres.
	Monthly [12]float64
}

// MonthKeys are the wire names of the monthly rainfall fields.
var MonthKeys = [12]string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// Metadata describes an indexed record. Type and Source form the common
// base; exactly one of Crop or Rainfall is set for a typed record.
// Extra carries any additional fields.
//
// On the wire metadata is a flat JSON object, e.g.
// {"type":"crop_production","source":"...","state":"Punjab","year":2020}.
type Metadata struct {
	Type     RecordType
	Source   string
	Crop     *CropProduction
	Rainfall *Rainfall
	Extra    map[string]any
}

// NewCropMetadata creates metadata for a crop production record.
func NewCropMetadata(c CropProduction) Metadata {
	return Metadata{
		Type:   RecordTypeCropProduction,
		Source: SourceMinistryOfAgriculture,
		Crop:   &c,
	}
}

// NewRainfallMetadata creates metadata for a rainfall record.
func NewRainfallMetadata(r Rainfall) Metadata {
	return Metadata{
		Type:     RecordTypeRainfall,
		Source:   SourceIMD,
		Rainfall: &r,
	}
}

// SourceLabel returns the source, or "Unknown" when absent.
func (m Metadata) SourceLabel() string {
	if m.Source == "" {
		return Unknown
	}
	return m.Source
}

// TypeLabel returns the type tag, or "Unknown" when absent.
func (m Metadata) TypeLabel() string {
	if m.Type == "" {
		return Unknown
	}
	return string(m.Type)
}

// Validate checks that the variant payload matches the type tag.
func (m Metadata) Validate() error {
	switch m.Type {
	case RecordTypeCropProduction:
		if m.Crop == nil || m.Rainfall != nil {
			return fmt.Errorf("%w: crop_production metadata requires crop fields only", ErrInvalidInput)
		}
	case RecordTypeRainfall:
		if m.Rainfall == nil || m.Crop != nil {
			return fmt.Errorf("%w: rainfall metadata requires rainfall fields only", ErrInvalidInput)
		}
	case "":
		if m.Crop != nil || m.Rainfall != nil {
			return fmt.Errorf("%w: untyped metadata cannot carry a variant", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: record type %q", ErrUnsupportedType, m.Type)
	}
	return nil
}

// Get returns a field by its wire name.
func (m Metadata) Get(key string) (any, bool) {
	v, ok := m.Fields()[key]
	return v, ok
}

// Fields flattens the metadata into its wire representation.
func (m Metadata) Fields() map[string]any {
	fields := make(map[string]any, len(m.Extra)+16)
	for k, v := range m.Extra {
		fields[k] = v
	}
	if m.Type != "" {
		fields["type"] = string(m.Type)
	}
	if m.Source != "" {
		fields["source"] = m.Source
	}

	if c := m.Crop; c != nil {
		fields["state"] = c.State
		fields["district"] = c.District
		fields["crop"] = c.Crop
		fields["season"] = c.Season
		fields["year"] = c.Year
		fields["area_hectares"] = c.AreaHectares
		fields["production_tonnes"] = c.ProductionTonnes
		fields["yield_tonnes_per_hectare"] = c.YieldTonnesPerHectare
	}

	if r := m.Rainfall; r != nil {
		fields["subdivision"] = r.Subdivision
		fields["year"] = r.Year
		fields["annual"] = r.Annual
		for i, key := range MonthKeys {
			fields[key] = r.Monthly[i]
		}
	}

	return fields
}

// MarshalJSON encodes metadata as a flat object.
func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Fields())
}

// UnmarshalJSON decodes a flat object, dispatching on the "type" tag.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	decoded, err := MetadataFromFields(fields)
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// MetadataFromFields builds typed metadata from a flat field map.
// Fields not belonging to the variant are kept in Extra.
func MetadataFromFields(fields map[string]any) (Metadata, error) {
	rest := make(map[string]any, len(fields))
	for k, v := range fields {
		rest[k] = v
	}

	m := Metadata{
		Type:   RecordType(takeString(rest, "type")),
		Source: takeString(rest, "source"),
	}

	switch m.Type {
	case RecordTypeCropProduction:
		m.Crop = &CropProduction{
			State:                 takeString(rest, "state"),
			District:              takeString(rest, "district"),
			Crop:                  takeString(rest, "crop"),
			Season:                takeString(rest, "season"),
			Year:                  int(takeNumber(rest, "year")),
			AreaHectares:          takeNumber(rest, "area_hectares"),
			ProductionTonnes:      takeNumber(rest, "production_tonnes"),
			YieldTonnesPerHectare: takeNumber(rest, "yield_tonnes_per_hectare"),
		}
	case RecordTypeRainfall:
		r := &Rainfall{
			Subdivision: takeString(rest, "subdivision"),
			Year:        int(takeNumber(rest, "year")),
			Annual:      takeNumber(rest, "annual"),
		}
		for i, key := range MonthKeys {
			r.Monthly[i] = takeNumber(rest, key)
		}
		m.Rainfall = r
	case "":
	default:
		return Metadata{}, fmt.Errorf("%w: record type %q", ErrUnsupportedType, m.Type)
	}

	if len(rest) > 0 {
		m.Extra = rest
	}
	return m, nil
}

// takeString removes key from fields and returns it as a string.
func takeString(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	delete(fields, key)
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// takeNumber removes key from fields and returns it as a float64.
func takeNumber(fields map[string]any, key string) float64 {
	v, ok := fields[key]
	if !ok {
		return 0
	}
	delete(fields, key)
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
