package dto

// ReportFile is a rendered repo report ready for download. Body is base64
// encoded when the struct passes through JSON (the cache layer relies on
// that).
type ReportFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}
