package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ComponentType enum
type ComponentType string

const (
	ComponentEarning   ComponentType = "earning"
	ComponentDeduction ComponentType = "deduction"
)

// Component is one line of a salary breakdown.
type Component struct {
	Name  string        `json:"name"`
	Value float64       `json:"value"`
	Type  ComponentType `json:"type"`
}

// Breakdown is the structured form of salary remarks.
type Breakdown struct {
	Components      []Component `json:"components"`
	TotalEarnings   float64     `json:"totalEarnings"`
	TotalDeductions float64     `json:"totalDeductions"`
	Net             float64     `json:"net"`
}

// Remarks holds either free text or a Breakdown, never both.
// The zero value means "no remarks" and is stored as NULL.
type Remarks struct {
	Text      string
	Breakdown *Breakdown
}

// PlainText builds text remarks.
func PlainText(s string) Remarks {
	return Remarks{Text: s}
}

// BreakdownRemarks builds structured remarks, filling in totals when the
// caller left them all at zero.
func BreakdownRemarks(b Breakdown) Remarks {
	b.fillTotals()
	return Remarks{Breakdown: &b}
}

// ParseRemarks decodes s as a breakdown when it looks like one and falls back
// to plain text otherwise.
func ParseRemarks(s string) Remarks {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") {
		if b, err := decodeBreakdown([]byte(trimmed)); err == nil {
			return Remarks{Breakdown: b}
		}
	}
	return Remarks{Text: s}
}

func (r Remarks) IsZero() bool {
	return r.Breakdown == nil && r.Text == ""
}

func (r Remarks) IsBreakdown() bool {
	return r.Breakdown != nil
}

// String renders the stored representation.
func (r Remarks) String() string {
	if r.Breakdown != nil {
		data, err := json.Marshal(r.Breakdown)
		if err != nil {
			return ""
		}
		return string(data)
	}
	return r.Text
}

// MarshalJSON implements json.Marshaler
func (r Remarks) MarshalJSON() ([]byte, error) {
	switch {
	case r.Breakdown != nil:
		return json.Marshal(r.Breakdown)
	case r.Text == "":
		return []byte("null"), nil
	default:
		return json.Marshal(r.Text)
	}
}

// UnmarshalJSON accepts null, a string, or an object. Objects that do not
// decode as a breakdown become text.
func (r *Remarks) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = Remarks{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = ParseRemarks(s)
		return nil
	case data[0] == '{':
		// Objects that are not a breakdown are kept verbatim as text.
		b, err := decodeBreakdown(data)
		if err != nil {
			*r = PlainText(string(data))
			return nil
		}
		*r = Remarks{Breakdown: b}
		return nil
	default:
		return fmt.Errorf("remarks must be a string or an object")
	}
}

func (r Remarks) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	return r.String(), nil
}

func (r *Remarks) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = Remarks{}
	case string:
		*r = ParseRemarks(v)
	case []byte:
		*r = ParseRemarks(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Remarks", value)
	}
	return nil
}

type breakdownWire struct {
	Components      json.RawMessage `json:"components"`
	TotalEarnings   *float64        `json:"totalEarnings"`
	TotalDeductions *float64        `json:"totalDeductions"`
	Net             *float64        `json:"net"`
}

// decodeBreakdown reads a breakdown whose components are either a list or an
// object keyed by component id.
func decodeBreakdown(data []byte) (*Breakdown, error) {
	var w breakdownWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if len(w.Components) == 0 && w.Net == nil {
		return nil, fmt.Errorf("not a salary breakdown")
	}

	b := &Breakdown{}
	components := bytes.TrimSpace(w.Components)
	switch {
	case len(components) == 0 || bytes.Equal(components, []byte("null")):
	case components[0] == '[':
		if err := json.Unmarshal(components, &b.Components); err != nil {
			return nil, err
		}
	case components[0] == '{':
		var keyed map[string]Component
		if err := json.Unmarshal(components, &keyed); err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(keyed))
		for k := range keyed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.Components = append(b.Components, keyed[k])
		}
	default:
		return nil, fmt.Errorf("components must be a list or an object")
	}

	if w.TotalEarnings != nil {
		b.TotalEarnings = *w.TotalEarnings
	}
	if w.TotalDeductions != nil {
		b.TotalDeductions = *w.TotalDeductions
	}
	if w.Net != nil {
		b.Net = *w.Net
	}
	b.fillTotals()
	return b, nil
}

func (b *Breakdown) fillTotals() {
	if b.TotalEarnings != 0 || b.TotalDeductions != 0 || b.Net != 0 {
		return
	}
	for _, c := range b.Components {
		switch c.Type {
		case ComponentDeduction:
			b.TotalDeductions += c.Value
		default:
			b.TotalEarnings += c.Value
		}
	}
	b.Net = b.TotalEarnings - b.TotalDeductions
}
