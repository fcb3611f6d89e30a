package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

// Crop production column names as served by data.gov.in.
const (
	cropColState      = "state_name"
	cropColDistrict   = "district_name"
	cropColYear       = "crop_year"
	cropColSeason     = "season"
	cropColCrop       = "crop"
	cropColArea       = "area_"
	cropColProduction = "production_"
)

// Rainfall column names, matched case-insensitively.
const (
	rainColSubdivision = "subdivision"
	rainColYear        = "year"
	rainColAnnual      = "annual"
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// CleanCropRecords converts raw crop production rows into typed records.
// Text fields are trimmed and title-cased; rows without a state or crop
// are dropped. Unparseable numbers become zero.
func CleanCropRecords(rows []map[string]any) []domain.CropProduction {
	out := make([]domain.CropProduction, 0, len(rows))
	for _, row := range rows {
		c := domain.CropProduction{
			State:            cleanText(row[cropColState]),
			District:         cleanText(row[cropColDistrict]),
			Crop:             cleanText(row[cropColCrop]),
			Season:           cleanText(row[cropColSeason]),
			Year:             int(parseNumber(row[cropColYear])),
			AreaHectares:     parseNumber(row[cropColArea]),
			ProductionTonnes: parseNumber(row[cropColProduction]),
		}
		if c.State == "" || c.Crop == "" {
			continue
		}
		if c.AreaHectares != 0 {
			c.YieldTonnesPerHectare = c.ProductionTonnes / c.AreaHectares
		}
		out = append(out, c)
	}
	return out
}

// CleanRainfallRecords converts raw rainfall rows into typed records.
// Rows without a subdivision or a valid year are dropped.
func CleanRainfallRecords(rows []map[string]any) []domain.Rainfall {
	out := make([]domain.Rainfall, 0, len(rows))
	for _, raw := range rows {
		row := lowerKeys(raw)

		subdivision := strings.TrimSpace(toString(row[rainColSubdivision]))
		year, ok := tryParseNumber(row[rainColYear])
		if subdivision == "" || !ok {
			continue
		}

		r := domain.Rainfall{
			Subdivision: subdivision,
			Year:        int(year),
			Annual:      parseNumber(row[rainColAnnual]),
		}
		for i, key := range domain.MonthKeys {
			r.Monthly[i] = parseNumber(row[key])
		}
		out = append(out, r)
	}
	return out
}

// FormatCropRecord renders a crop production row as an indexable sentence.
func FormatCropRecord(c domain.CropProduction) domain.Record {
	text := fmt.Sprintf(
		"In %s, %s district, %s crop production was %.2f tonnes from %.2f hectares in year %s during %s season. Yield was %.2f tonnes per hectare.",
		orUnknown(c.State), orUnknown(c.District), orUnknown(c.Crop),
		c.ProductionTonnes, c.AreaHectares, yearLabel(c.Year), orUnknown(c.Season),
		c.YieldTonnesPerHectare,
	)
	return domain.Record{Text: text, Metadata: domain.NewCropMetadata(c)}
}

// FormatRainfallRecord renders a rainfall row as an indexable sentence.
func FormatRainfallRecord(r domain.Rainfall) domain.Record {
	var b strings.Builder
	fmt.Fprintf(&b, "In %s, the annual rainfall was %.2f mm in year %s. Monthly rainfall: ",
		orUnknown(r.Subdivision), r.Annual, yearLabel(r.Year))
	for i, name := range monthNames {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %.2f mm", name, r.Monthly[i])
	}
	b.WriteString(".")
	return domain.Record{Text: b.String(), Metadata: domain.NewRainfallMetadata(r)}
}

// CropRecords cleans and formats raw crop rows.
func CropRecords(rows []map[string]any) []domain.Record {
	cleaned := CleanCropRecords(rows)
	records := make([]domain.Record, len(cleaned))
	for i, c := range cleaned {
		records[i] = FormatCropRecord(c)
	}
	return records
}

// RainfallRecords cleans and formats raw rainfall rows.
func RainfallRecords(rows []map[string]any) []domain.Record {
	cleaned := CleanRainfallRecords(rows)
	records := make([]domain.Record, len(cleaned))
	for i, r := range cleaned {
		records[i] = FormatRainfallRecord(r)
	}
	return records
}

func orUnknown(s string) string {
	if s == "" {
		return domain.Unknown
	}
	return s
}

func yearLabel(year int) string {
	if year == 0 {
		return domain.Unknown
	}
	return strconv.Itoa(year)
}

func lowerKeys(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// cleanText trims and title-cases a field.
func cleanText(v any) string {
	return titleCase(strings.TrimSpace(toString(v)))
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, so "KHARIF     " and "kharif" both become "Kharif".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

func parseNumber(v any) float64 {
	f, _ := tryParseNumber(v)
	return f
}

// tryParseNumber accepts numbers and numeric strings. NaN, infinities and
// anything unparseable report false.
func tryParseNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
