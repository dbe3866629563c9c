package features

import (
	"strings"
)

// Row is a single model-input feature row. Values are category codes
// (strings), integers, or floats. The row remembers the order in which
// names were first set so the column order stays stable.
type Row struct {
	names  []string
	values map[string]any
}

// NewRow returns an empty feature row.
func NewRow() *Row {
	return &Row{values: make(map[string]any)}
}

// Set stores a value under the given feature name. The name joins the
// column order on first use; setting it again overwrites in place.
func (r *Row) Set(name string, value any) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Value returns the value stored under the given feature name.
func (r *Row) Value(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Has reports whether the feature name has been set.
func (r *Row) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Numeric returns the value under name coerced to float64. It reports
// false for missing names and for categorical (string) values.
func (r *Row) Numeric(name string) (float64, bool) {
	switch v := r.values[name].(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// Names returns the feature names in column order.
func (r *Row) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Values returns the values in column order.
func (r *Row) Values() []any {
	out := make([]any, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.values[name])
	}
	return out
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.names)
}

// Align returns a copy of the row reduced and reordered to exactly the
// given feature names. Names the row does not carry are filled with the
// schema defaults: 0 for campaign indicators, 0 for leaflet indicators
// except leaflet_none which defaults to 1, and 0 for everything else.
func (r *Row) Align(featureNames []string) *Row {
	out := NewRow()
	for _, name := range featureNames {
		if v, ok := r.values[name]; ok {
			out.Set(name, v)
			continue
		}
		out.Set(name, defaultFor(name))
	}
	return out
}

func defaultFor(name string) int {
	switch {
	case strings.HasPrefix(name, campaignPrefix):
		return 0
	case strings.HasPrefix(name, leafletPrefix):
		if name == leafletNoneFeature {
			return 1
		}
		return 0
	default:
		return 0
	}
}
