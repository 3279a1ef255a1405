package analytics

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/workshop-hub/backend/internal/models"
)

const (
	// KeywordLimit is how many keywords are reported.
	KeywordLimit = 5
	// KeywordMinRunes is the exclusive lower bound on keyword length.
	KeywordMinRunes = 3
	// SuggestionLimit caps free-text suggestions echoed in detail views.
	SuggestionLimit = 5
	// TopParticipantsLimit caps the participants-by-attendance ranking.
	TopParticipantsLimit = 10
)

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Rate is num/den as a percentage rounded to 2 places; 0 when den is 0.
func Rate(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return round2(float64(num) / float64(den) * 100)
}

// Mean is num/den rounded to 2 places; 0 when den is 0.
func Mean(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return round2(float64(num) / float64(den))
}

// Average is the mean of values rounded to 2 places; nil when values is empty.
func Average(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := round2(sum / float64(len(values)))
	return &avg
}

// ParseRating returns the numeric value of a rating or scale answer.
// Other response types and unparseable values report ok=false.
func ParseRating(rt models.ResponseType, raw string) (float64, bool) {
	if !rt.IsRating() {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Ratings collects the parseable rating values of rows, in row order.
func Ratings(rows []ResponseRow) []float64 {
	var out []float64
	for _, r := range rows {
		if v, ok := ParseRating(r.ResponseType, r.Response); ok {
			out = append(out, v)
		}
	}
	return out
}

// TextResponses returns the non-empty answers to text-type questions, in row order.
func TextResponses(rows []ResponseRow) []string {
	var out []string
	for _, r := range rows {
		if r.ResponseType == models.ResponseText && r.Response != "" {
			out = append(out, r.Response)
		}
	}
	return out
}

// Counter counts keys and remembers first-seen order for tie breaks.
type Counter[K comparable] struct {
	order  []K
	counts map[K]int
}

// Entry is one key with its count.
type Entry[K comparable] struct {
	Key   K
	Count int
}

// NewCounter returns an empty counter.
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{counts: make(map[K]int)}
}

// Add increments k.
func (c *Counter[K]) Add(k K) {
	if _, ok := c.counts[k]; !ok {
		c.order = append(c.order, k)
	}
	c.counts[k]++
}

// Get returns the count of k.
func (c *Counter[K]) Get(k K) int { return c.counts[k] }

// Len is the number of distinct keys.
func (c *Counter[K]) Len() int { return len(c.order) }

// MostCommon returns up to n entries by descending count; equal counts keep first-seen order.
// n <= 0 returns every entry.
func (c *Counter[K]) MostCommon(n int) []Entry[K] {
	out := make([]Entry[K], 0, len(c.order))
	for _, k := range c.order {
		out = append(out, Entry[K]{Key: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Map returns the counts as a plain map.
func (c *Counter[K]) Map() map[K]int {
	out := make(map[K]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// TopKeywords splits texts on whitespace, lowercases, keeps tokens longer than
// KeywordMinRunes and returns the KeywordLimit most frequent.
func TopKeywords(texts []string) []string {
	c := NewCounter[string]()
	for _, t := range texts {
		for _, w := range strings.Fields(t) {
			if utf8.RuneCountInString(w) > KeywordMinRunes {
				c.Add(strings.ToLower(w))
			}
		}
	}
	out := make([]string, 0, KeywordLimit)
	for _, e := range c.MostCommon(KeywordLimit) {
		out = append(out, e.Key)
	}
	return out
}

// DistinctParticipants counts unique participant ids across rows.
func DistinctParticipants(rows []ResponseRow) int {
	return len(participantSet(rows))
}

func participantSet(rows []ResponseRow) map[int64]struct{} {
	set := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		set[r.ParticipantID] = struct{}{}
	}
	return set
}

// RatingDistribution buckets rating values by their integer part.
func RatingDistribution(rows []ResponseRow) map[int]int {
	out := make(map[int]int)
	for _, r := range rows {
		if v, ok := ParseRating(r.ResponseType, r.Response); ok {
			out[int(math.Trunc(v))]++
		}
	}
	return out
}

// Suggestions returns the first SuggestionLimit text answers.
func Suggestions(rows []ResponseRow) []string {
	texts := TextResponses(rows)
	if len(texts) > SuggestionLimit {
		texts = texts[:SuggestionLimit]
	}
	if texts == nil {
		texts = []string{}
	}
	return texts
}

// Tally summarises registrations and responses for a set of sessions.
type Tally struct {
	Registered           int
	Attended             int
	Ratings              []float64
	Texts                []string
	FeedbackParticipants int
}

// AttendanceRate is Rate(Attended, Registered).
func (t Tally) AttendanceRate() float64 { return Rate(t.Attended, t.Registered) }

// AvgRating is Average(Ratings).
func (t Tally) AvgRating() *float64 { return Average(t.Ratings) }

// Keywords is TopKeywords(Texts).
func (t Tally) Keywords() []string { return TopKeywords(t.Texts) }

// TallyOf computes a Tally over the given rows.
func TallyOf(regs []RegistrationRow, resps []ResponseRow) Tally {
	t := Tally{
		Registered:           len(regs),
		Ratings:              Ratings(resps),
		Texts:                TextResponses(resps),
		FeedbackParticipants: DistinctParticipants(resps),
	}
	for _, r := range regs {
		if r.Attendance {
			t.Attended++
		}
	}
	return t
}
