package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", New(KindRateLimitExceeded, "slow down"), KindRateLimitExceeded},
		{"wrapped by fmt", fmt.Errorf("call: %w", New(KindInvalidCredential, "bad key")), KindInvalidCredential},
		{"wrapped cause", Wrap(stderrors.New("boom"), KindProviderError, "provider failed"), KindProviderError},
		{"foreign error", stderrors.New("plain"), KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("transcribe: %w", Newf(KindRateLimitExceeded, "429 from %s", "provider"))

	assert.True(t, stderrors.Is(err, ErrRateLimitExceeded))
	assert.False(t, stderrors.Is(err, ErrInvalidCredential))
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(stderrors.New("connection reset"), KindProviderError, "transcription failed")

	assert.Equal(t, "transcription failed: connection reset", err.Error())
	assert.Equal(t, "transcription failed", err.(*Error).Message())
	assert.Nil(t, Wrap(nil, KindProviderError, "unused"))
}

func TestClassifyStorage(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		reason string
	}{
		{"missing file", &fs.PathError{Op: "open", Path: "/tmp/x", Err: syscall.ENOENT}, ReasonNotFound},
		{"too many open files", &fs.PathError{Op: "open", Path: "/tmp/x", Err: syscall.EMFILE}, ReasonTooManyOpenFiles},
		{"deadline", fmt.Errorf("write: %w", os.ErrDeadlineExceeded), ReasonTimeout},
		{"other", stderrors.New("disk on fire"), ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ClassifyStorage(tc.err, "scratch write failed")
			assert.Equal(t, KindStorageError, KindOf(err))
			assert.Equal(t, tc.reason, ReasonOf(err))
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestClassifyStoragePassesThroughClassified(t *testing.T) {
	original := New(KindFileTooLarge, "too big")

	assert.Same(t, original, ClassifyStorage(original, "ignored"))
	assert.Nil(t, ClassifyStorage(nil, "ignored"))
}
