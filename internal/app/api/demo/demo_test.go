package demo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTranscriptReturnsCannedText(t *testing.T) {
	tr := NewTranscriber(20*time.Millisecond, zap.NewNop())

	start := time.Now()
	text, err := tr.Transcript(context.Background(), "/does/not/matter.mp3")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Contains(t, CannedTexts, text)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	assert.Equal(t, "Local model (demo)", tr.Name())
}

func TestTranscriptStaysWithinCannedSet(t *testing.T) {
	tr := NewTranscriber(0, nil)

	for i := 0; i < 50; i++ {
		text, err := tr.Transcript(context.Background(), "a.wav")
		require.NoError(t, err)
		assert.Contains(t, CannedTexts, text)
	}
}

func TestTranscriptHonoursContext(t *testing.T) {
	tr := NewTranscriber(time.Hour, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := tr.Transcript(ctx, "a.wav")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
