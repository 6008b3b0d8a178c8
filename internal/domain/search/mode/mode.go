package mode

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Exact compares normalized values, ignoring case.
	Exact Mode = "exact"
	// Fuzzy matches case-insensitive substrings on every provided field.
	Fuzzy Mode = "fuzzy"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Exact || m == Fuzzy
}
