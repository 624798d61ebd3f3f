package models

// FileInfo is the descriptor returned by the upload gateway.
type FileInfo struct {
	Type         string `json:"type"` // image|video
	Size         int64  `json:"size"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
}
