package types

import "fmt"

// SurveyStatus represents the final verdict of a survey
type SurveyStatus string

const (
	SurveyStatusPass SurveyStatus = "PASS"
	SurveyStatusFail SurveyStatus = "FAIL"
	SurveyStatusWarn SurveyStatus = "WARN"
)

// AllSurveyStatuses returns all valid survey statuses
func AllSurveyStatuses() []SurveyStatus {
	return []SurveyStatus{
		SurveyStatusPass,
		SurveyStatusFail,
		SurveyStatusWarn,
	}
}

// IsValid checks if the survey status is valid
func (s SurveyStatus) IsValid() bool {
	switch s {
	case SurveyStatusPass,
		SurveyStatusFail,
		SurveyStatusWarn:
		return true
	default:
		return false
	}
}

// String returns the string representation of the survey status
func (s SurveyStatus) String() string {
	return string(s)
}

// ParseSurveyStatus parses a string into a SurveyStatus
func ParseSurveyStatus(s string) (SurveyStatus, error) {
	status := SurveyStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid survey status: %s", s)
	}
	return status, nil
}
