package dto

// TranscriptionResponse is returned by POST /api/transcribe on success
type TranscriptionResponse struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Service  string `json:"service"`
	// Wall-clock milliseconds from request receipt to response
	ProcessingTime int64 `json:"processingTime"`
}

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	Status                string `json:"status"`
	Timestamp             string `json:"timestamp"`
	HasProviderCredential bool   `json:"hasProviderCredential"`
	Environment           string `json:"environment"`
	UploadsDir            string `json:"uploadsDir"`
	MaxFileSize           string `json:"maxFileSize"`
}

// FormatsResponse is returned by GET /api/formats
type FormatsResponse struct {
	SupportedFormats   []string `json:"supportedFormats"`
	MaxFileSize        int64    `json:"maxFileSize"`
	MaxFileSizeHuman   string   `json:"maxFileSizeHuman"`
	SupportedMimeTypes []string `json:"supportedMimeTypes"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// NotFoundResponse lists the public endpoints for unmatched routes
type NotFoundResponse struct {
	Error              string   `json:"error"`
	AvailableEndpoints []string `json:"availableEndpoints"`
}
