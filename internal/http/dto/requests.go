package dto

// LoginRequest exchanges the deployment API key for a session token.
// Name identifies the operator in the action log ("admin" if empty).
type LoginRequest struct {
	APIKey string `json:"api_key"`
	Name   string `json:"name"`
}

// SaveDocumentRequest carries the full replacement body for a document.
type SaveDocumentRequest struct {
	Body map[string]any `json:"body"`
}
