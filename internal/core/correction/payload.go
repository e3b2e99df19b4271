package correction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field is a payload value that is either present or absent. Absent leaves the
// stored value alone; present replaces it, even when the value is empty.
type Field[T any] struct {
	Value   T
	Present bool
}

// Set returns a present field.
func Set[T any](v T) Field[T] {
	return Field[T]{Value: v, Present: true}
}

// Payload is the partial edit an employee proposes for one day.
// A present Location with a nil value clears the stored location.
type Payload struct {
	InAtLocal    Field[string]
	OutAtLocal   Field[string]
	BreakMinutes Field[int]
	Location     Field[*string]
}

// IsEmpty reports whether the payload changes nothing.
func (p Payload) IsEmpty() bool {
	return !p.InAtLocal.Present && !p.OutAtLocal.Present && !p.BreakMinutes.Present && !p.Location.Present
}

// Validate checks the present fields without needing a base day.
func (p Payload) Validate() error {
	if p.InAtLocal.Present {
		if _, err := ParseLocal(p.InAtLocal.Value); err != nil {
			return &ValidationError{Field: "in_at_local", Reason: err.Error()}
		}
	}
	if p.OutAtLocal.Present {
		if _, err := ParseLocal(p.OutAtLocal.Value); err != nil {
			return &ValidationError{Field: "out_at_local", Reason: err.Error()}
		}
	}
	if p.BreakMinutes.Present && (p.BreakMinutes.Value < 0 || p.BreakMinutes.Value > MaxBreakMinutes) {
		return &ValidationError{Field: "break_minutes", Reason: fmt.Sprintf("must be between 0 and %d", MaxBreakMinutes)}
	}
	return nil
}

// Summary renders the present fields for humans, e.g. "in 09:00 / break 45 min".
func (p Payload) Summary() string {
	var parts []string
	if p.InAtLocal.Present {
		parts = append(parts, "in "+timePart(p.InAtLocal.Value))
	}
	if p.OutAtLocal.Present {
		parts = append(parts, "out "+timePart(p.OutAtLocal.Value))
	}
	if p.BreakMinutes.Present {
		parts = append(parts, fmt.Sprintf("break %d min", p.BreakMinutes.Value))
	}
	if p.Location.Present {
		loc := "(empty)"
		if p.Location.Value != nil {
			loc = *p.Location.Value
		}
		parts = append(parts, "location "+loc)
	}
	if len(parts) == 0 {
		return "(no change)"
	}
	return strings.Join(parts, " / ")
}

func timePart(local string) string {
	if _, t, ok := strings.Cut(local, "T"); ok {
		return t
	}
	return local
}

// UnmarshalJSON keeps the difference between a missing key and a key set to null.
// Blank local times and a null/blank break are treated as absent; a location key
// is present whenever it exists, and null or blank clears it.
func (p *Payload) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Payload{}

	for _, f := range []struct {
		key string
		dst *Field[string]
	}{
		{"in_at_local", &p.InAtLocal},
		{"out_at_local", &p.OutAtLocal},
	} {
		v, ok := raw[f.key]
		if !ok || isNull(v) {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return &ValidationError{Field: f.key, Reason: "must be a string"}
		}
		if s = strings.TrimSpace(s); s != "" {
			*f.dst = Set(s)
		}
	}

	if v, ok := raw["break_minutes"]; ok && !isNull(v) {
		n, present, err := parseBreakMinutes(v)
		if err != nil {
			return err
		}
		if present {
			p.BreakMinutes = Set(n)
		}
	}

	if v, ok := raw["location"]; ok {
		var loc *string
		if !isNull(v) {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return &ValidationError{Field: "location", Reason: "must be a string"}
			}
			if s = strings.TrimSpace(s); s != "" {
				loc = &s
			}
		}
		p.Location = Set(loc)
	}
	return nil
}

// MarshalJSON writes only present fields, so a stored payload reads back identically.
func (p Payload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 4)
	if p.InAtLocal.Present {
		out["in_at_local"] = p.InAtLocal.Value
	}
	if p.OutAtLocal.Present {
		out["out_at_local"] = p.OutAtLocal.Value
	}
	if p.BreakMinutes.Present {
		out["break_minutes"] = p.BreakMinutes.Value
	}
	if p.Location.Present {
		out["location"] = p.Location.Value
	}
	return json.Marshal(out)
}

// parseBreakMinutes accepts a JSON number or a numeric string. A blank string
// means the field was left empty in the form.
func parseBreakMinutes(v json.RawMessage) (int, bool, error) {
	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()

	var val interface{}
	if err := dec.Decode(&val); err != nil {
		return 0, false, &ValidationError{Field: "break_minutes", Reason: "must be numeric"}
	}
	switch x := val.(type) {
	case json.Number:
		num = x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false, nil
		}
		num = json.Number(s)
	default:
		return 0, false, &ValidationError{Field: "break_minutes", Reason: "must be numeric"}
	}

	f, err := strconv.ParseFloat(num.String(), 64)
	if err != nil {
		return 0, false, &ValidationError{Field: "break_minutes", Reason: "must be numeric"}
	}
	if f < 0 || f > MaxBreakMinutes {
		return 0, false, &ValidationError{Field: "break_minutes", Reason: fmt.Sprintf("must be between 0 and %d", MaxBreakMinutes)}
	}
	if f != math.Trunc(f) {
		return 0, false, &ValidationError{Field: "break_minutes", Reason: "must be a whole number of minutes"}
	}
	return int(f), true, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
