package domain

// Upload is a user-supplied file as received by the front-end.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Submission is what the front-end hands back to the page after a submit attempt.
type Submission struct {
	Text   string
	Result *AnalysisResult
}
