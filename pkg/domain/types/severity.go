package types

// Severity identifies the inspection-profile lexicon entry that matched a
// component finding. The set of valid values is defined by the loaded
// profile, not by this package.
type Severity string

// SeverityNone marks a finding that matched no lexicon entry
const SeverityNone Severity = ""

// String returns the string representation of the severity tag
func (s Severity) String() string {
	return string(s)
}
