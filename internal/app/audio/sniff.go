package audio

import (
	"os"

	"github.com/dhowden/tag"
)

// UnknownContainer is reported when the header matches no known container
const UnknownContainer = "unknown"

// DetectContainer reads the file header at path and names the container it
// recognises (MP3, M4A, FLAC, OGG, ...). It is informational only and never
// affects whether an upload is accepted.
func DetectContainer(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return UnknownContainer
	}
	defer f.Close()

	_, fileType, err := tag.Identify(f)
	if err != nil || fileType == tag.UnknownFileType {
		return UnknownContainer
	}
	return string(fileType)
}
