package config

import "time"

// Default configuration values
const (
	// Network defaults
	DefaultHost = ""
	DefaultPort = "3001"

	DefaultEnvironment = "production"

	// OpenAI specific
	DefaultTranscribeModel       = "gpt-4o-mini-transcribe"
	DefaultTranscribeLanguage    = "hy"
	DefaultTranscribeTemperature = 0.2

	// Uploads
	DefaultUploadsDir  = "uploads"
	DefaultMaxFileSize = 25 * 1024 * 1024

	// Demo transcriber latency
	DefaultFallbackDelay = 2 * time.Second

	// Timeout defaults. Read and write are unbounded so a slow provider call
	// holds the request open instead of being cut off by the server.
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second

	// PlaceholderAPIKey is the value shipped in .env.example.
	PlaceholderAPIKey = "your_openai_api_key_here"
)

// DefaultAllowedOrigins are the frontend dev server origins.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

// DefaultAllowedMimeTypes lists declared media types accepted for upload.
var DefaultAllowedMimeTypes = []string{
	"audio/mp3",
	"audio/mpeg",
	"audio/wav",
	"audio/x-wav",
	"audio/ogg",
	"audio/flac",
	"audio/m4a",
	"audio/mp4",
	"audio/webm",
	"audio/aac",
}

// DefaultAllowedExtensions lists filename extensions accepted for upload.
var DefaultAllowedExtensions = []string{".mp3", ".wav", ".ogg", ".flac", ".m4a", ".webm", ".aac"}
