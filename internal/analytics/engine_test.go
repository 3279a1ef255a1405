package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshop-hub/backend/internal/models"
)

func TestRateAndAverageAsymmetry(t *testing.T) {
	assert.Equal(t, 0.0, Rate(0, 0))
	assert.Equal(t, 100.0, Rate(3, 3))
	assert.Equal(t, 33.33, Rate(1, 3))
	assert.Equal(t, 66.67, Rate(2, 3))
	assert.Nil(t, Average(nil))

	avg := Average([]float64{4, 5})
	require.NotNil(t, avg)
	assert.Equal(t, 4.5, *avg)

	avg = Average([]float64{1, 2, 2})
	require.NotNil(t, avg)
	assert.Equal(t, 1.67, *avg)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(5, 0))
	assert.Equal(t, 2.5, Mean(5, 2))
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		rt   models.ResponseType
		raw  string
		want float64
		ok   bool
	}{
		{models.ResponseScale, "4", 4, true},
		{models.ResponseRating, " 3.5 ", 3.5, true},
		{models.ResponseRating, "great", 0, false},
		{models.ResponseRating, "NaN", 0, false},
		{models.ResponseRating, "Inf", 0, false},
		{models.ResponseText, "5", 0, false},
		{models.ResponseYesNo, "1", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseRating(tt.rt, tt.raw)
		assert.Equal(t, tt.ok, ok, "%s %q", tt.rt, tt.raw)
		assert.Equal(t, tt.want, got, "%s %q", tt.rt, tt.raw)
	}
}

func TestTopKeywords(t *testing.T) {
	texts := []string{
		"Great session, very useful examples",
		"useful content and great trainer",
		"More examples please",
	}
	got := TopKeywords(texts)
	assert.Equal(t, []string{"great", "useful", "examples", "session,", "very"}, got)

	for i := 0; i < 10; i++ {
		assert.Equal(t, got, TopKeywords(texts), "keyword order must be deterministic")
	}
}

func TestTopKeywords_LengthCutoffAndCase(t *testing.T) {
	got := TopKeywords([]string{"the GIS tool Maps maps MAPS data"})
	assert.Equal(t, []string{"maps", "tool", "data"}, got)
	assert.Empty(t, TopKeywords(nil))
	assert.NotNil(t, TopKeywords(nil))
}

func TestCounter_MostCommonKeepsFirstSeenOnTies(t *testing.T) {
	c := NewCounter[string]()
	for _, k := range []string{"b", "a", "c", "a", "b", "d"} {
		c.Add(k)
	}
	got := c.MostCommon(3)
	require.Len(t, got, 3)
	assert.Equal(t, []Entry[string]{{"b", 2}, {"a", 2}, {"c", 1}}, got)
	assert.Equal(t, 4, c.Len())
	assert.Len(t, c.MostCommon(0), 4)
}

func TestTallyOf_AttendedWithoutRatings(t *testing.T) {
	regs := []RegistrationRow{{Attendance: true}, {Attendance: true}, {Attendance: true}}
	resps := []ResponseRow{{ParticipantID: 1, ResponseType: models.ResponseText, Response: "nice"}}
	tally := TallyOf(regs, resps)
	assert.Equal(t, 100.0, tally.AttendanceRate())
	assert.Nil(t, tally.AvgRating())
	assert.Equal(t, 1, tally.FeedbackParticipants)
}

func TestTallyOf_ZeroRegistrations(t *testing.T) {
	tally := TallyOf(nil, nil)
	assert.Equal(t, 0.0, tally.AttendanceRate())
	assert.Nil(t, tally.AvgRating())
	assert.Empty(t, tally.Keywords())
}

func TestRatingDistributionTruncates(t *testing.T) {
	rows := []ResponseRow{
		{ResponseType: models.ResponseScale, Response: "4.9"},
		{ResponseType: models.ResponseRating, Response: "4"},
		{ResponseType: models.ResponseRating, Response: "2.1"},
		{ResponseType: models.ResponseText, Response: "5"},
		{ResponseType: models.ResponseRating, Response: "x"},
	}
	assert.Equal(t, map[int]int{4: 2, 2: 1}, RatingDistribution(rows))
}

func TestSuggestions(t *testing.T) {
	var rows []ResponseRow
	for _, s := range []string{"a", "", "b", "c", "d", "e", "f"} {
		rows = append(rows, ResponseRow{ResponseType: models.ResponseText, Response: s})
	}
	rows = append(rows, ResponseRow{ResponseType: models.ResponseParagraph, Response: "para"})
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, Suggestions(rows))
	assert.Equal(t, []string{}, Suggestions(nil))
}

func TestDistinctParticipants(t *testing.T) {
	rows := []ResponseRow{{ParticipantID: 1}, {ParticipantID: 2}, {ParticipantID: 1}}
	assert.Equal(t, 2, DistinctParticipants(rows))
}
