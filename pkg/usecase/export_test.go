package usecase

// Export internal functions for testing
var (
	EvaluateVerdict = evaluateVerdict
	RenderReport    = renderReport
	MeanEmbedding   = meanEmbedding
)
