// Package anomaly derives structural findings from classified objects.
//
// ZeroArea looks at one page at a time. RepeatedPatterns needs every page
// of a document and runs once they are all classified.
package anomaly

import "github.com/dimdasci/pdfs-api/model"

// DefaultEpsilon is the zero-area threshold in square points
const DefaultEpsilon = 0.0001

// ZeroArea flags every object of a 1-based page whose box area is at most
// epsilon.
func ZeroArea(page int, objects []model.Object, epsilon float64) []model.Finding {
	var out []model.Finding
	for _, obj := range objects {
		area := obj.BBox.Area()
		if area > epsilon {
			continue
		}
		out = append(out, model.Finding{
			Kind:       model.KindZeroArea,
			Severity:   model.SeverityWarning,
			Confidence: 1,
			Objects:    []model.ObjectRef{{Page: page, ID: obj.ID}},
			Area:       area,
		})
	}
	return out
}
