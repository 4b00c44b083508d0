package types

import "github.com/google/uuid"

// SurveyID is a UUID-based identifier for a Survey
type SurveyID string

// NewSurveyID generates a new UUID v4 SurveyID
func NewSurveyID() SurveyID {
	return SurveyID(uuid.New().String())
}

// String returns the string representation of the survey ID
func (id SurveyID) String() string {
	return string(id)
}
