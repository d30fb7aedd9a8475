package classify

import (
	"strings"
	"testing"

	"github.com/dimdasci/pdfs-api/core"
	"github.com/dimdasci/pdfs-api/internal/testpdf"
	"github.com/dimdasci/pdfs-api/interpreter"
	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/reader"
)

func objectsOf(t *testing.T, data []byte, opts ...Option) []model.Object {
	t.Helper()
	doc, err := reader.Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	objects, _, err := FromSequence(1, interpreter.New(doc, page).Events(), opts...)
	if err != nil {
		t.Fatalf("FromSequence failed: %v", err)
	}
	return objects
}

// TestGroupsMerge tests that glyphs of one show operator form one object
func TestGroupsMerge(t *testing.T) {
	events := []interpreter.PaintEvent{
		{Kind: interpreter.ShowText, Group: 1, Text: "A", BBox: model.Rect{X0: 10, Y0: 10, X1: 16, Y1: 20}},
		{Kind: interpreter.ShowText, Group: 1, Text: "B", BBox: model.Rect{X0: 16, Y0: 10, X1: 22, Y1: 21}},
		{Kind: interpreter.PaintPath, Group: 2, BBox: model.Rect{X0: 0, Y0: 0, X1: 5, Y1: 5}},
		{Kind: interpreter.Shade, Group: 5, Name: "Sh0", BBox: model.Rect{X1: 100, Y1: 100}},
	}
	objects := Classify(3, events)
	if len(objects) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(objects))
	}

	text := objects[0]
	if text.Type != model.TypeText || text.ID != "p3-o1" || text.ZIndex != 1 {
		t.Errorf("unexpected text object %+v", text)
	}
	if text.BBox != (model.Rect{X0: 10, Y0: 10, X1: 22, Y1: 21}) {
		t.Errorf("expected union box, got %v", text.BBox)
	}
	if text.Content != "AB" || text.Fingerprint == "" {
		t.Errorf("unexpected content %q fingerprint %q", text.Content, text.Fingerprint)
	}
	if len(text.Shapes) != 2 {
		t.Errorf("expected 2 shapes, got %d", len(text.Shapes))
	}

	if objects[1].Type != model.TypePath || objects[1].ID != "p3-o2" {
		t.Errorf("unexpected path object %+v", objects[1])
	}
	if objects[2].Type != model.TypeOther || objects[2].ZIndex != 3 || objects[2].Content != "Sh0" {
		t.Errorf("unexpected shading object %+v", objects[2])
	}
}

// TestTypeOf tests the event kind mapping
func TestTypeOf(t *testing.T) {
	tests := []struct {
		kind interpreter.Kind
		want model.ObjectType
	}{
		{interpreter.ShowText, model.TypeText},
		{interpreter.DrawImage, model.TypeImage},
		{interpreter.InlineImage, model.TypeImage},
		{interpreter.PaintPath, model.TypePath},
		{interpreter.Shade, model.TypeOther},
	}
	for _, tt := range tests {
		if got := TypeOf(tt.kind); got != tt.want {
			t.Errorf("TypeOf(%v) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

// TestContentTruncated tests the 64 character excerpt
func TestContentTruncated(t *testing.T) {
	long := strings.Repeat("é", 100)
	objects := Classify(1, []interpreter.PaintEvent{{Kind: interpreter.ShowText, Group: 0, Text: long}})
	if n := len([]rune(objects[0].Content)); n != ContentLength {
		t.Errorf("expected %d characters, got %d", ContentLength, n)
	}
}

// TestTextFingerprintNormalized tests that compatibility forms hash alike
func TestTextFingerprintNormalized(t *testing.T) {
	a := Classify(1, []interpreter.PaintEvent{{Kind: interpreter.ShowText, Text: "ﬁnal"}})
	b := Classify(2, []interpreter.PaintEvent{{Kind: interpreter.ShowText, Text: "final"}})
	if a[0].Fingerprint != b[0].Fingerprint {
		t.Error("ligature and plain text should share a fingerprint")
	}
	blank := Classify(1, []interpreter.PaintEvent{{Kind: interpreter.ShowText, Text: "  "}})
	if blank[0].Fingerprint != "" {
		t.Error("blank text should have no fingerprint")
	}
}

// TestImageFingerprint tests stream hashing and the override hook
func TestImageFingerprint(t *testing.T) {
	events := []interpreter.PaintEvent{
		{Kind: interpreter.DrawImage, Group: 1, Name: "Im1", Image: &core.Stream{Data: []byte{1, 2, 3}}},
		{Kind: interpreter.DrawImage, Group: 2, Name: "Im2", Image: &core.Stream{Data: []byte{1, 2, 3}}},
		{Kind: interpreter.InlineImage, Group: 3, InlineData: []byte{9}},
	}
	objects := Classify(1, events)
	if objects[0].Fingerprint == "" || objects[0].Fingerprint != objects[1].Fingerprint {
		t.Error("identical image bytes should share a fingerprint")
	}
	if objects[0].Content != "Im1" || objects[2].Content != "inline" {
		t.Errorf("unexpected contents %q %q", objects[0].Content, objects[2].Content)
	}

	hook := WithImageFingerprint(func(ev interpreter.PaintEvent) (string, bool) {
		return "ocr:" + ev.Name, ev.Name == "Im1"
	})
	objects = Classify(1, events, hook)
	if objects[0].Fingerprint != "ocr:Im1" {
		t.Errorf("expected hook fingerprint, got %q", objects[0].Fingerprint)
	}
	if objects[1].Fingerprint == "ocr:Im2" || objects[1].Fingerprint == "" {
		t.Errorf("expected fallback hash, got %q", objects[1].Fingerprint)
	}
}

// TestZIndexFromPage tests strictly increasing z-indices on a real page
func TestZIndexFromPage(t *testing.T) {
	content := "0 0 1 rg 0 0 612 792 re f " +
		"BT /F1 12 Tf 72 720 Td [(Hel) -100 (lo)] TJ ET " +
		"1 w 72 700 m 540 700 l S " +
		"BT /F1 9 Tf 72 40 Td (Footer) Tj ET"
	objects := objectsOf(t, testpdf.Pages(content))
	want := []model.ObjectType{model.TypePath, model.TypeText, model.TypePath, model.TypeText}
	if len(objects) != len(want) {
		t.Fatalf("expected %d objects, got %d", len(want), len(objects))
	}
	for i, obj := range objects {
		if obj.Type != want[i] {
			t.Errorf("object %d: type %v, want %v", i, obj.Type, want[i])
		}
		if obj.ZIndex != i+1 {
			t.Errorf("object %d: z-index %d", i, obj.ZIndex)
		}
		if obj.BBox.X0 > obj.BBox.X1 || obj.BBox.Y0 > obj.BBox.Y1 {
			t.Errorf("object %d: unnormalized box %v", i, obj.BBox)
		}
	}
	if objects[1].Content != "Hello" {
		t.Errorf("expected TJ text to merge, got %q", objects[1].Content)
	}
}

// TestDeterministic tests that two runs classify identically
func TestDeterministic(t *testing.T) {
	data := testpdf.Pages("BT /F1 12 Tf 72 720 Td (Same) Tj ET 10 10 50 50 re f")
	a := objectsOf(t, data)
	b := objectsOf(t, data)
	if len(a) != len(b) {
		t.Fatalf("object counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].BBox != b[i].BBox || a[i].Fingerprint != b[i].Fingerprint {
			t.Errorf("object %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// TestClippedBoxes tests that drawing outside the clip does not widen boxes
func TestClippedBoxes(t *testing.T) {
	content := "q 0 0 100 800 re W n BT /F1 20 Tf 80 500 Td (ABCDEFGHIJKLMNOP) Tj ET Q " +
		"q 0 0 100 100 re W n 300 300 10 10 re f Q"
	objects := objectsOf(t, testpdf.Pages(content))
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objects))
	}

	text := objects[0]
	if text.BBox.X0 != 80 || text.BBox.X1 > 100 {
		t.Errorf("text box should end at the clip, got %v", text.BBox)
	}
	if text.Content != "ABCDEFGHIJKLMNOP" {
		t.Errorf("clipped glyphs still belong to the text, got %q", text.Content)
	}

	path := objects[1]
	clip := model.Rect{X1: 100, Y1: 100}
	if u := path.BBox.Union(clip); u != clip {
		t.Errorf("hidden path box %v should lie on the clip %v", path.BBox, clip)
	}
	if path.BBox.Area() != 0 {
		t.Errorf("hidden path should have no area, got %v", path.BBox)
	}
}

// TestAllClippedGroup tests a group with every event outside the clip
func TestAllClippedGroup(t *testing.T) {
	events := []interpreter.PaintEvent{
		{Kind: interpreter.ShowText, Group: 1, Text: "A", Clipped: true, BBox: model.Rect{X0: 100, Y0: 50, X1: 100, Y1: 50}},
		{Kind: interpreter.ShowText, Group: 1, Text: "B", Clipped: true, BBox: model.Rect{X0: 100, Y0: 60, X1: 100, Y1: 60}},
		{Kind: interpreter.ShowText, Group: 2, Text: "C", Clipped: true, BBox: model.Rect{X0: 0, Y0: 0, X1: 0, Y1: 0}},
		{Kind: interpreter.ShowText, Group: 2, Text: "D", BBox: model.Rect{X0: 10, Y0: 10, X1: 20, Y1: 20}},
	}
	objects := Classify(1, events)
	if objects[0].BBox != (model.Rect{X0: 100, Y0: 50, X1: 100, Y1: 60}) {
		t.Errorf("expected the union of the hidden boxes, got %v", objects[0].BBox)
	}
	if objects[1].BBox != (model.Rect{X0: 10, Y0: 10, X1: 20, Y1: 20}) {
		t.Errorf("a visible event should replace the hidden box, got %v", objects[1].BBox)
	}
}
