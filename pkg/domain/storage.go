package domain

// UploadURLRequest asks for a pre-signed upload URL. Key is optional; a
// random key is generated when absent.
type UploadURLRequest struct {
	Key      string            `json:"key,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// UploadURLResponse describes a pre-signed PUT upload.
type UploadURLResponse struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Key       string            `json:"key"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	ExpiresIn int               `json:"expires_in"`
	PublicURL string            `json:"public_url"`
}
