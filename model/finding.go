package model

// FindingKind names an anomaly
type FindingKind string

const (
	KindZeroArea        FindingKind = "zero_area"
	KindRepeatedPattern FindingKind = "repeated_pattern"
)

// Severity grades a finding
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Region is the page edge a repeated pattern sits against
type Region string

const (
	RegionHeader Region = "header"
	RegionFooter Region = "footer"
	RegionOther  Region = "other"
)

// ObjectRef points at an object on a 1-based page
type ObjectRef struct {
	Page int    `json:"page"`
	ID   string `json:"id"`
}

// Finding flags one object (zero_area) or a cross-page cluster
// (repeated_pattern).
type Finding struct {
	Kind       FindingKind `json:"kind"`
	Severity   Severity    `json:"severity"`
	Confidence float64     `json:"confidence"`
	Objects    []ObjectRef `json:"objects"`

	// Area is the measured bounding-box area for zero_area findings.
	Area float64 `json:"area,omitempty"`

	// Pages and Region are set for repeated_pattern findings.
	Pages  []int  `json:"pages,omitempty"`
	Region Region `json:"region,omitempty"`
}

// Touches reports whether the finding references an object on page
func (f Finding) Touches(page int) bool {
	for _, r := range f.Objects {
		if r.Page == page {
			return true
		}
	}
	return false
}
