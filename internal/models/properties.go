package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// PropertyType is the declared value type of a participant property.
type PropertyType string

const (
	PropString  PropertyType = "string"
	PropText    PropertyType = "text"
	PropNumber  PropertyType = "number"
	PropInteger PropertyType = "integer"
	PropBoolean PropertyType = "boolean"
	PropDate    PropertyType = "date"
)

// PropertySpec declares one property of a participant type.
type PropertySpec struct {
	Type     PropertyType `json:"type"`
	Required bool         `json:"required"`
}

// PropertySchema maps property name to its spec.
//
// On the wire it accepts a list of names, a name -> type string map, or a
// name -> {type, required} map. Bare names and type strings are required and
// default to string.
type PropertySchema map[string]PropertySpec

// UnmarshalJSON decodes any of the accepted schema shapes.
func (s *PropertySchema) UnmarshalJSON(b []byte) error {
	out := PropertySchema{}
	var names []string
	if err := json.Unmarshal(b, &names); err == nil {
		for _, n := range names {
			out[n] = PropertySpec{Type: PropString, Required: true}
		}
		*s = out
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("properties must be a list or an object: %w", err)
	}
	for name, v := range raw {
		var typ string
		if err := json.Unmarshal(v, &typ); err == nil {
			out[name] = PropertySpec{Type: normalizeType(typ), Required: true}
			continue
		}
		spec := PropertySpec{Required: true}
		if err := json.Unmarshal(v, &spec); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		spec.Type = normalizeType(string(spec.Type))
		out[name] = spec
	}
	*s = out
	return nil
}

func normalizeType(t string) PropertyType {
	switch PropertyType(t) {
	case PropString, PropText, PropNumber, PropInteger, PropBoolean, PropDate:
		return PropertyType(t)
	default:
		return PropString
	}
}

// RequiredNames returns required property names in sorted order.
func (s PropertySchema) RequiredNames() []string {
	var names []string
	for n, spec := range s {
		if spec.Required {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Check validates props against the schema. missing lists absent required keys
// in sorted order; mismatched maps key -> expected type for values of the wrong type.
// Keys not declared by the schema are accepted as-is.
func (s PropertySchema) Check(props map[string]any) (missing []string, mismatched map[string]string) {
	for _, name := range s.RequiredNames() {
		v, ok := props[name]
		if !ok || v == nil || v == "" {
			missing = append(missing, name)
		}
	}
	for name, v := range props {
		spec, ok := s[name]
		if !ok || v == nil {
			continue
		}
		if !matches(spec.Type, v) {
			if mismatched == nil {
				mismatched = map[string]string{}
			}
			mismatched[name] = fmt.Sprintf("must be of type %s", spec.Type)
		}
	}
	return missing, mismatched
}

func matches(t PropertyType, v any) bool {
	switch t {
	case PropNumber:
		_, ok := v.(float64)
		return ok
	case PropInteger:
		f, ok := v.(float64)
		return ok && f == math.Trunc(f)
	case PropBoolean:
		_, ok := v.(bool)
		return ok
	case PropDate:
		str, ok := v.(string)
		if !ok {
			return false
		}
		_, err := time.Parse(DateLayout, str)
		return err == nil
	default:
		_, ok := v.(string)
		return ok
	}
}
