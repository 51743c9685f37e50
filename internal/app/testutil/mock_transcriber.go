package testutil

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"hy-whisper/internal/app/api"
)

// MockTranscriber is a testify mock of api.Transcriber. Besides the usual
// expectations it records, for every call, whether the file was still on
// disk when the transcriber saw it.
type MockTranscriber struct {
	mock.Mock
	mu sync.Mutex

	ServiceName string
	Latency     time.Duration

	CallHistory []TranscriptionCall
}

// TranscriptionCall represents a single transcription call for tracking
type TranscriptionCall struct {
	InputFilePath string
	FileExisted   bool
	Timestamp     time.Time
}

// NewMockTranscriber creates a mock reporting name as its service
func NewMockTranscriber(name string) *MockTranscriber {
	return &MockTranscriber{ServiceName: name}
}

// Name implements api.Transcriber
func (m *MockTranscriber) Name() string {
	return m.ServiceName
}

// Transcript implements api.Transcriber
func (m *MockTranscriber) Transcript(ctx context.Context, inputFilePath string) (string, error) {
	_, statErr := os.Stat(inputFilePath)

	m.mu.Lock()
	m.CallHistory = append(m.CallHistory, TranscriptionCall{
		InputFilePath: inputFilePath,
		FileExisted:   statErr == nil,
		Timestamp:     time.Now(),
	})
	latency := m.Latency
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	args := m.Called(inputFilePath)
	return args.String(0), args.Error(1)
}

// WithLatency delays every call by d
func (m *MockTranscriber) WithLatency(d time.Duration) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Latency = d
	return m
}

// ExpectAny answers every call with text and err
func (m *MockTranscriber) ExpectAny(text string, err error) *MockTranscriber {
	m.On("Transcript", mock.AnythingOfType("string")).Return(text, err)
	return m
}

// GetCallHistory returns the complete call history
func (m *MockTranscriber) GetCallHistory() []TranscriptionCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := make([]TranscriptionCall, len(m.CallHistory))
	copy(history, m.CallHistory)
	return history
}

// GetLastCall returns the last transcription call
func (m *MockTranscriber) GetLastCall() *TranscriptionCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.CallHistory) == 0 {
		return nil
	}
	call := m.CallHistory[len(m.CallHistory)-1]
	return &call
}

// Interface compliance check
var _ api.Transcriber = (*MockTranscriber)(nil)
