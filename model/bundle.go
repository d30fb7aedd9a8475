package model

// PageStatus tells whether a page was analysed
type PageStatus string

const (
	StatusOK     PageStatus = "ok"
	StatusFailed PageStatus = "failed"
)

// PageBundle is the assembled result for one page. Page is 1-based.
type PageBundle struct {
	DocumentID string     `json:"document_id"`
	Page       int        `json:"page"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Rotation   int        `json:"rotation"`
	Raster     string     `json:"raster,omitempty"`
	Outline    string     `json:"outline,omitempty"`
	Layers     []Layer    `json:"layers"`
	Objects    []Object   `json:"objects"`
	Findings   []Finding  `json:"findings"`
	Warnings   []Warning  `json:"warnings,omitempty"`
	Status     PageStatus `json:"status"`
	ErrorKind  string     `json:"error_kind,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Failed reports whether the page could not be analysed
func (b *PageBundle) Failed() bool {
	return b.Status == StatusFailed
}
