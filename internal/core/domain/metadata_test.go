package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func punjabWheat() Metadata {
	return NewCropMetadata(CropProduction{
		State:            "Punjab",
		District:         "Ludhiana",
		Crop:             "Wheat",
		Season:           "Rabi",
		Year:             2020,
		AreaHectares:     10000,
		ProductionTonnes: 50000,
	})
}

func TestRecordType_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		rt       RecordType
		expected bool
	}{
		{"crop_production is valid", RecordTypeCropProduction, true},
		{"rainfall is valid", RecordTypeRainfall, true},
		{"empty is invalid", RecordType(""), false},
		{"unknown is invalid", RecordType("soil_health"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rt.IsValid())
		})
	}
}

func TestNewCropMetadata(t *testing.T) {
	m := punjabWheat()

	assert.Equal(t, RecordTypeCropProduction, m.Type)
	assert.Equal(t, SourceMinistryOfAgriculture, m.Source)
	require.NotNil(t, m.Crop)
	assert.Nil(t, m.Rainfall)
	assert.NoError(t, m.Validate())
}

func TestNewRainfallMetadata(t *testing.T) {
	m := NewRainfallMetadata(Rainfall{Subdivision: "Kerala", Year: 2019, Annual: 3000})

	assert.Equal(t, RecordTypeRainfall, m.Type)
	assert.Equal(t, SourceIMD, m.Source)
	require.NotNil(t, m.Rainfall)
	assert.NoError(t, m.Validate())
}

func TestMetadata_Validate(t *testing.T) {
	tests := []struct {
		name    string
		meta    Metadata
		wantErr error
	}{
		{"crop without payload", Metadata{Type: RecordTypeCropProduction}, ErrInvalidInput},
		{"rainfall with crop payload", Metadata{Type: RecordTypeRainfall, Crop: &CropProduction{}}, ErrInvalidInput},
		{"untyped with payload", Metadata{Rainfall: &Rainfall{}}, ErrInvalidInput},
		{"unknown type", Metadata{Type: "soil"}, ErrUnsupportedType},
		{"untyped plain", Metadata{Source: "manual"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestMetadata_Labels(t *testing.T) {
	var empty Metadata
	assert.Equal(t, Unknown, empty.SourceLabel())
	assert.Equal(t, Unknown, empty.TypeLabel())

	m := punjabWheat()
	assert.Equal(t, SourceMinistryOfAgriculture, m.SourceLabel())
	assert.Equal(t, "crop_production", m.TypeLabel())
}

func TestMetadata_MarshalJSON_IsFlat(t *testing.T) {
	data, err := json.Marshal(punjabWheat())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Equal(t, "crop_production", fields["type"])
	assert.Equal(t, "Punjab", fields["state"])
	assert.Equal(t, "Wheat", fields["crop"])
	assert.Equal(t, float64(2020), fields["year"])
	assert.NotContains(t, fields, "subdivision")
}

func TestMetadata_JSONRoundTrip(t *testing.T) {
	rain := NewRainfallMetadata(Rainfall{Subdivision: "Kerala", Year: 2019, Annual: 3000.5})
	rain.Rainfall.Monthly[5] = 650.25
	rain.Extra = map[string]any{"note": "provisional"}

	for _, original := range []Metadata{punjabWheat(), rain, {Source: "manual"}} {
		data, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded Metadata
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, original, decoded)
	}
}

func TestMetadata_UnmarshalJSON_UnknownType(t *testing.T) {
	var m Metadata
	err := json.Unmarshal([]byte(`{"type":"soil_health","source":"x"}`), &m)

	assert.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestMetadata_UnmarshalJSON_KeepsExtra(t *testing.T) {
	var m Metadata
	err := json.Unmarshal([]byte(`{"type":"crop_production","state":"Assam","crop":"Tea","grade":"A"}`), &m)
	require.NoError(t, err)

	require.NotNil(t, m.Crop)
	assert.Equal(t, "Assam", m.Crop.State)
	assert.Equal(t, map[string]any{"grade": "A"}, m.Extra)
}

func TestMetadata_Get(t *testing.T) {
	m := punjabWheat()

	state, ok := m.Get("state")
	require.True(t, ok)
	assert.Equal(t, "Punjab", state)

	_, ok = m.Get("subdivision")
	assert.False(t, ok)
}
