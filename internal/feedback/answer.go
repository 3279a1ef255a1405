package feedback

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/workshop-hub/backend/internal/models"
	"github.com/workshop-hub/backend/pkg/apperror"
)

var yesNoTokens = map[string]struct{}{
	"Yes": {}, "No": {}, "yes": {}, "no": {}, "true": {}, "false": {},
}

// NormalizeAnswer checks raw against the question's response type and returns the text to store.
func NormalizeAnswer(rt models.ResponseType, raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", apperror.ValidationFields("Response is required.", map[string]string{"response": "required"})
	}
	var str string
	isString := json.Unmarshal(raw, &str) == nil

	switch {
	case rt == models.ResponseText || rt == models.ResponseParagraph:
		if !isString {
			return "", invalid("Response must be a string for paragraph/text type.")
		}
		return str, nil

	case rt.IsChoice():
		src := raw
		if isString {
			src = []byte(str)
		}
		var picked []any
		if err := json.Unmarshal(src, &picked); err != nil || picked == nil {
			return "", invalid("Checkbox/multiple_choice responses must be a valid JSON array.")
		}
		out, err := json.Marshal(picked)
		if err != nil {
			return "", invalid("Checkbox/multiple_choice responses must be a valid JSON array.")
		}
		return string(out), nil

	case rt.IsRating():
		text := string(raw)
		if isString {
			text = strings.TrimSpace(str)
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return "", invalid("Rating/scale response must be a number.")
		}
		return text, nil

	case rt == models.ResponseYesNo:
		var b bool
		if json.Unmarshal(raw, &b) == nil {
			return strconv.FormatBool(b), nil
		}
		if _, ok := yesNoTokens[str]; isString && ok {
			return str, nil
		}
		return "", invalid("Yes/No response must be 'Yes' or 'No'.")
	}

	if !isString {
		return "", invalid("Response must be a string.")
	}
	return str, nil
}

func invalid(msg string) error {
	return apperror.ValidationFields(msg, map[string]string{"response": msg})
}
