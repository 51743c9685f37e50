// Package demo provides a stand-in transcriber used when no provider API key
// is configured, so the upload flow can be exercised end to end.
package demo

import (
	"context"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ServiceName is reported as the producing service.
const ServiceName = "Local model (demo)"

// CannedTexts are the only outputs the demo transcriber produces.
var CannedTexts = []string{
	"Բարև ձեզ! Սա օրինակ է տեքստի հայերեն լեզվով:",
	"Այս ֆայլը հաջողությամբ մշակվեց տեղական մոդելով:",
	"Խնդրում ենք կարգավորել OpenAI API բանալին ավելի ճշգրիտ արդյունքների համար:",
}

// Transcriber returns a random canned sentence after a fixed delay. It never
// reads the audio.
type Transcriber struct {
	delay  time.Duration
	logger *zap.Logger
}

// NewTranscriber creates a demo transcriber that answers after delay.
func NewTranscriber(delay time.Duration, logger *zap.Logger) *Transcriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcriber{delay: delay, logger: logger.Named("demo")}
}

// Name implements api.Transcriber
func (t *Transcriber) Name() string {
	return ServiceName
}

// Transcript waits for the configured delay, or until ctx is done, and
// returns one of CannedTexts.
func (t *Transcriber) Transcript(ctx context.Context, inputFilePath string) (string, error) {
	t.logger.Info("Using demo transcriber", zap.String("file", filepath.Base(inputFilePath)))

	timer := time.NewTimer(t.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return lo.Sample(CannedTexts), nil
}
