package model

import (
	"fmt"
	"strings"
)

// Warning records a recoverable problem met while interpreting a page.
// Op is the 0-based operator index within the content stream, or -1.
type Warning struct {
	Page     int    `json:"page"`
	Op       int    `json:"op"`
	Operator string `json:"operator,omitempty"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	if w.Operator != "" {
		return fmt.Sprintf("page %d: op %d (%s): %s", w.Page, w.Op, w.Operator, w.Message)
	}
	return fmt.Sprintf("page %d: %s", w.Page, w.Message)
}

// FormatWarnings joins warnings one per line
func FormatWarnings(ws []Warning) string {
	lines := make([]string, len(ws))
	for i, w := range ws {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
