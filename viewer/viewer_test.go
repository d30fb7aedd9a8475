package viewer

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/dimdasci/pdfs-api/model"
)

func bundles() []*model.PageBundle {
	return []*model.PageBundle{
		{
			DocumentID: "report",
			Page:       1,
			Width:      612,
			Height:     792,
			Raster:     "report/pages/p001/page.png",
			Outline:    "report/pages/p001/outline.png",
			Status:     model.StatusOK,
			Layers: []model.Layer{
				{Type: model.TypeText, Bucket: 0, Raster: "report/pages/p001/l000.png", ObjectCount: 1, Objects: []int{0}},
			},
			Objects: []model.Object{
				{ID: "p1-o1", Type: model.TypeText, ZIndex: 1, Content: "<Header & Co>"},
			},
			Findings: []model.Finding{
				{Kind: model.KindRepeatedPattern, Severity: model.SeverityInfo, Confidence: 0.82,
					Objects: []model.ObjectRef{{Page: 1, ID: "p1-o1"}}, Pages: []int{1, 2}, Region: model.RegionHeader},
			},
		},
		{DocumentID: "report", Page: 2, Status: model.StatusFailed, ErrorKind: "PageDecodeError", Error: "truncated"},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, bundles(), WithScale(2)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>report</title>",
		`src="report/pages/p001/page.png"`,
		`src="report/pages/p001/l000.png"`,
		`src="report/pages/p001/outline.png"`,
		"width:1224px;height:1584px",
		"&lt;Header &amp; Co&gt;",
		"header on pages [1 2]",
		"PageDecodeError: truncated",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// the output parses back with one section per page
	doc, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	sections := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "section" {
			sections++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if sections != 2 {
		t.Errorf("expected 2 sections, got %d", sections)
	}
}

func TestWriteTitle(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, WithTitle("empty")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<h1>empty</h1>") {
		t.Error("expected the custom title")
	}
}
