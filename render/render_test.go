package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/dimdasci/pdfs-api/classify"
	"github.com/dimdasci/pdfs-api/internal/testpdf"
	"github.com/dimdasci/pdfs-api/interpreter"
	"github.com/dimdasci/pdfs-api/layers"
	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/reader"
)

type fixture struct {
	doc     *reader.Document
	box     model.Rect
	objects []model.Object
	layers  []model.Layer
}

func load(t *testing.T, data []byte) fixture {
	t.Helper()
	doc, err := reader.Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	objects, _, err := classify.FromSequence(1, interpreter.New(doc, page).Events())
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	return fixture{
		doc:     doc,
		box:     page.CropBox,
		objects: objects,
		layers:  layers.Partition(objects, layers.Policy{}),
	}
}

func square(content string) []byte {
	return testpdf.Document(testpdf.Page{Content: content, MediaBox: "[0 0 100 100]"})
}

func isColor(c color.Color, want color.NRGBA) bool {
	got := color.NRGBAModel.Convert(c).(color.NRGBA)
	near := func(a, b uint8) bool { return int(a)-int(b) < 8 && int(b)-int(a) < 8 }
	return near(got.R, want.R) && near(got.G, want.G) && near(got.B, want.B) && near(got.A, want.A)
}

var (
	red         = color.NRGBA{R: 255, A: 255}
	blue        = color.NRGBA{B: 255, A: 255}
	white       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	transparent = color.NRGBA{}
)

// TestRenderPage tests a filled rectangle over the white background
func TestRenderPage(t *testing.T) {
	f := load(t, square("1 0 0 rg 10 10 30 30 re f"))
	img, err := New(f.doc).RenderPage(context.Background(), f.box, f.objects)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	// page (20,20) is pixel (20,80)
	if !isColor(img.At(20, 80), red) {
		t.Errorf("expected red inside the rectangle, got %v", img.At(20, 80))
	}
	if !isColor(img.At(80, 20), white) {
		t.Errorf("expected white background, got %v", img.At(80, 20))
	}
}

// TestScale tests resolution scaling
func TestScale(t *testing.T) {
	f := load(t, square("0 g 0 0 50 50 re f"))
	img, err := New(f.doc, WithScale(2)).RenderPage(context.Background(), f.box, f.objects)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 200 {
		t.Errorf("expected 200 pixels wide, got %d", img.Bounds().Dx())
	}
	if !isColor(img.At(50, 150), color.NRGBA{A: 255}) {
		t.Errorf("expected black at scaled position, got %v", img.At(50, 150))
	}
}

// TestOverlaySelects tests that overlays only draw selected objects
func TestOverlaySelects(t *testing.T) {
	f := load(t, square("1 0 0 rg 0 0 50 50 re f BT /F1 12 Tf 60 60 Td (X) Tj ET"))
	r := New(f.doc)
	img, err := r.RenderOverlay(context.Background(), f.box, f.objects, ByType(model.TypeText))
	if err != nil {
		t.Fatal(err)
	}
	if !isColor(img.At(25, 75), transparent) {
		t.Errorf("path should not be in a text overlay, got %v", img.At(25, 75))
	}

	img, err = r.RenderOverlay(context.Background(), f.box, f.objects, ByType(model.TypePath))
	if err != nil {
		t.Fatal(err)
	}
	if !isColor(img.At(25, 75), red) {
		t.Errorf("expected red path in path overlay, got %v", img.At(25, 75))
	}
	if !isColor(img.At(90, 10), transparent) {
		t.Errorf("expected transparent background, got %v", img.At(90, 10))
	}
}

// TestRenderLayers tests one distinct overlay per layer
func TestRenderLayers(t *testing.T) {
	f := load(t, square("1 0 0 rg 0 0 40 40 re f BT /F1 12 Tf 50 50 Td (A) Tj ET 0 0 1 rg 60 0 40 40 re f"))
	if len(f.layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(f.layers))
	}
	imgs, err := New(f.doc).RenderLayers(context.Background(), f.box, f.objects, f.layers, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(imgs) != 3 {
		t.Fatalf("expected 3 overlays, got %d", len(imgs))
	}
	if !isColor(imgs[0].At(20, 80), red) || !isColor(imgs[0].At(80, 80), transparent) {
		t.Error("first layer should hold only the red square")
	}
	if !isColor(imgs[2].At(80, 80), blue) || !isColor(imgs[2].At(20, 80), transparent) {
		t.Error("last layer should hold only the blue square")
	}
	if imgs[0] == imgs[2] {
		t.Error("overlays must not share an image")
	}
}

// TestImageXObject tests image placement through the CTM
func TestImageXObject(t *testing.T) {
	b := testpdf.New()
	im := b.AddStream("/Type /XObject /Subtype /Image /Width 2 /Height 1 /ColorSpace /DeviceRGB /BitsPerComponent 8",
		[]byte{255, 0, 0, 0, 0, 255})
	data := testpdf.DocumentWith(b, testpdf.Page{
		Content:   "q 50 0 0 50 0 0 cm /Im1 Do Q",
		Resources: fmt.Sprintf("/XObject << /Im1 %d 0 R >>", im),
		MediaBox:  "[0 0 100 100]",
	})
	f := load(t, data)
	img, err := New(f.doc).RenderPage(context.Background(), f.box, f.objects)
	if err != nil {
		t.Fatal(err)
	}
	if !isColor(img.At(5, 75), red) {
		t.Errorf("expected left half red, got %v", img.At(5, 75))
	}
	if !isColor(img.At(45, 75), blue) {
		t.Errorf("expected right half blue, got %v", img.At(45, 75))
	}
	if !isColor(img.At(75, 75), white) {
		t.Errorf("image drawn outside its square: %v", img.At(75, 75))
	}

	// without an image source the box is a placeholder
	img, err = New(nil).RenderPage(context.Background(), f.box, f.objects)
	if err != nil {
		t.Fatal(err)
	}
	if !isColor(img.At(25, 75), placeholder) {
		t.Errorf("expected placeholder, got %v", img.At(25, 75))
	}
}

// TestRenderOutline tests palette colored boxes
func TestRenderOutline(t *testing.T) {
	f := load(t, square("0 g 10 10 30 30 re f"))
	img, err := New(nil).RenderOutline(context.Background(), f.box, f.objects, f.layers)
	if err != nil {
		t.Fatal(err)
	}
	if !isColor(img.At(10, 75), Palette[model.TypePath]) {
		t.Errorf("expected path outline color on the left edge, got %v", img.At(10, 75))
	}
	if !isColor(img.At(25, 75), transparent) {
		t.Errorf("outline should not fill, got %v", img.At(25, 75))
	}
}

// TestPaletteDistinct tests the fixed palette
func TestPaletteDistinct(t *testing.T) {
	seen := map[color.NRGBA]model.ObjectType{}
	for _, typ := range model.ObjectTypes {
		c := ColorOf(typ)
		if prev, ok := seen[c]; ok {
			t.Errorf("%s and %s share color %v", prev, typ, c)
		}
		seen[c] = typ
	}
	if c := Palette[model.TypeText]; c.R < 200 || c.G < 150 || c.B > 50 {
		t.Errorf("text should be yellow, got %v", c)
	}
}

// TestPredicates tests predicate composition
func TestPredicates(t *testing.T) {
	ls := []model.Layer{
		{Type: model.TypeText, Bucket: 0, Objects: []int{0, 2}},
		{Type: model.TypePath, Bucket: 0, Objects: []int{1}},
		{Type: model.TypeText, Bucket: 1, Objects: []int{3}},
	}
	objs := []model.Object{{Type: model.TypeText}, {Type: model.TypePath}, {Type: model.TypeText}, {Type: model.TypeText}}
	pred := And(ByBucket(ls, 0), ByType(model.TypeText))
	var got []int
	for i, o := range objs {
		if pred(i, o) {
			got = append(got, i)
		}
	}
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("unexpected selection %v", got)
	}
	if !ByLayer(ls[2])(3, objs[3]) || ByLayer(ls[2])(0, objs[0]) {
		t.Error("ByLayer selected the wrong objects")
	}
}

// TestCancelled tests context cancellation
func TestCancelled(t *testing.T) {
	f := load(t, square("0 0 10 10 re f"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(nil).RenderPage(ctx, f.box, f.objects); err == nil {
		t.Error("expected a context error")
	}
	if _, err := New(nil).RenderLayers(ctx, f.box, f.objects, f.layers, 1); err == nil {
		t.Error("expected a context error from RenderLayers")
	}
}

// TestEncode tests both output formats
func TestEncode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := Encode(&buf, img, PNG); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("png output does not decode: %v", err)
	}
	buf.Reset()
	if err := Encode(&buf, img, TIFF); err != nil || buf.Len() == 0 {
		t.Errorf("tiff encode failed: %v", err)
	}
	if _, err := ParseFormat("bmp"); err == nil {
		t.Error("expected an error for bmp")
	}
	if f, _ := ParseFormat("tif"); f.Ext() != "tiff" {
		t.Errorf("unexpected extension %q", f.Ext())
	}
}
