package api

import "context"

// Transcriber defines a transcription interface for converting audio files to text.
type Transcriber interface {
	// Transcript returns the text spoken in the audio file at inputFilePath.
	Transcript(ctx context.Context, inputFilePath string) (string, error)

	// Name identifies the service in responses and metrics.
	Name() string
}
