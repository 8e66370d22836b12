package domain

// Condition is one term of an ERP search filter. Terms are AND-ed.
type Condition struct {
	Field    string
	Operator string
	Value    any
}

// Where builds an equality condition.
func Where(field string, value any) Condition {
	return Condition{Field: field, Operator: "=", Value: value}
}

// SearchOptions bounds an ERP search.
type SearchOptions struct {
	Fields []string
	Limit  int
	Offset int
	Order  string
}
