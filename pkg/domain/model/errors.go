package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across repository backends
var (
	ErrSurveyNotFound = goerr.New("survey not found")
	ErrSurveyExists   = goerr.New("survey already exists")
)
