package memory

import (
	"github.com/rigwatch/surveyor/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-memory repository for development and testing
type Memory struct {
	survey *surveyRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		survey: newSurveyRepository(),
	}
}

func (m *Memory) Survey() interfaces.SurveyRepository {
	return m.survey
}

func (m *Memory) Close() error {
	return nil
}
