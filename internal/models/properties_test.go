package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertySchemaShapes(t *testing.T) {
	var list PropertySchema
	require.NoError(t, json.Unmarshal([]byte(`["school", "grade"]`), &list))
	assert.Equal(t, PropertySpec{Type: PropString, Required: true}, list["school"])

	var typed PropertySchema
	require.NoError(t, json.Unmarshal([]byte(`{"grade": "integer", "joined": {"type": "date", "required": false}}`), &typed))
	assert.Equal(t, PropertySpec{Type: PropInteger, Required: true}, typed["grade"])
	assert.Equal(t, PropertySpec{Type: PropDate, Required: false}, typed["joined"])
	assert.Equal(t, []string{"grade"}, typed.RequiredNames())

	var bad PropertySchema
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestPropertySchemaCheck(t *testing.T) {
	schema := PropertySchema{
		"school": {Type: PropString, Required: true},
		"grade":  {Type: PropInteger, Required: true},
		"joined": {Type: PropDate},
		"active": {Type: PropBoolean},
	}

	missing, mismatched := schema.Check(map[string]any{"grade": 10.0, "joined": "2024-02-01", "extra": 1.0})
	assert.Equal(t, []string{"school"}, missing)
	assert.Empty(t, mismatched)

	missing, mismatched = schema.Check(map[string]any{"school": "Royal", "grade": 10.5, "joined": "01/02/2024", "active": "yes"})
	assert.Empty(t, missing)
	assert.Equal(t, map[string]string{
		"grade":  "must be of type integer",
		"joined": "must be of type date",
		"active": "must be of type boolean",
	}, mismatched)
}

func TestDateJSON(t *testing.T) {
	d, err := ParseDate("2025-03-04")
	require.NoError(t, err)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-04"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(d.Time))
}

func TestParseClockAndTitle(t *testing.T) {
	c, err := ParseClock("9:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", c)
	_, err = ParseClock("25:00")
	assert.Error(t, err)

	d, _ := ParseDate("2025-01-15")
	s := Session{WorkshopTitle: "Intro to GIS", Date: d, Time: "14:05:00"}
	assert.Equal(t, "Intro to GIS - 2025-01-15", s.Title())
	assert.Equal(t, 14, s.Clock().Hour())
}
