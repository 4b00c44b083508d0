package usecase

import (
	"github.com/m-mizutani/gollem"
	"github.com/rigwatch/surveyor/pkg/domain/interfaces"
	"github.com/rigwatch/surveyor/pkg/domain/model"
)

// UseCases wires the pipeline stages together. All collaborators are injected
// at construction so the validator and synthesizer stay testable with fakes.
type UseCases struct {
	repo    interfaces.Repository
	vision  interfaces.VisionClient
	llm     gollem.LLMClient
	profile *model.InspectionProfile
	archive interfaces.ImageArchive
}

type Option func(*UseCases)

// WithProfile replaces the built-in inspection profile
func WithProfile(profile *model.InspectionProfile) Option {
	return func(uc *UseCases) {
		if profile != nil {
			uc.profile = profile
		}
	}
}

// WithArchive enables post-persist image archival
func WithArchive(archive interfaces.ImageArchive) Option {
	return func(uc *UseCases) {
		uc.archive = archive
	}
}

func New(repo interfaces.Repository, vision interfaces.VisionClient, llm gollem.LLMClient, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:    repo,
		vision:  vision,
		llm:     llm,
		profile: model.DefaultProfile(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Profile returns the active inspection profile
func (uc *UseCases) Profile() *model.InspectionProfile {
	return uc.profile
}
