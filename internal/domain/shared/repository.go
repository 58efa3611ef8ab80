package shared

import "strings"

// DefaultOrderField is the field every entity list is ordered by unless told otherwise.
const DefaultOrderField = "created_date"

// DefaultListLimit caps list queries that do not pass a limit.
const DefaultListLimit = 500

// OrderSpec describes the ordering of an entity list query.
// The textual form is a field name optionally prefixed with "-" for descending order,
// e.g. "-created_date" or "price".
type OrderSpec struct {
	Field string
	Desc  bool
}

// DefaultOrderSpec orders by creation time, newest first.
func DefaultOrderSpec() OrderSpec {
	return OrderSpec{Field: DefaultOrderField, Desc: true}
}

// ParseOrderSpec parses the textual order form. An empty string yields DefaultOrderSpec.
func ParseOrderSpec(raw string) OrderSpec {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return DefaultOrderSpec()
	}
	if strings.HasPrefix(raw, "-") {
		return OrderSpec{Field: raw[1:], Desc: true}
	}
	return OrderSpec{Field: strings.TrimPrefix(raw, "+")}
}

// String returns the textual form of the spec.
func (o OrderSpec) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}

// NormalizeLimit returns DefaultListLimit for non-positive limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
