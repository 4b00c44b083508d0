package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Survey() SurveyRepository

	// Close releases resources held by the backend
	Close() error
}
