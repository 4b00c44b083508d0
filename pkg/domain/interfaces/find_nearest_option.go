package interfaces

import "github.com/rigwatch/surveyor/pkg/domain/types"

// FindNearestOption is a functional option for filtering similarity queries
type FindNearestOption func(*findNearestConfig)

type findNearestConfig struct {
	status *types.SurveyStatus
}

// WithStatus restricts matches to surveys with the given final status
func WithStatus(status types.SurveyStatus) FindNearestOption {
	return func(c *findNearestConfig) {
		c.status = &status
	}
}

// BuildFindNearestConfig builds a findNearestConfig from options
func BuildFindNearestConfig(opts ...FindNearestOption) *findNearestConfig {
	cfg := &findNearestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Status returns the status filter value, or nil if not set
func (c *findNearestConfig) Status() *types.SurveyStatus {
	return c.status
}
