package config

// NewGeminiForTest creates a Gemini config with preset values for testing
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}
