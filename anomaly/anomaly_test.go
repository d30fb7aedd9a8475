package anomaly

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimdasci/pdfs-api/model"
)

var letter = model.Rect{X1: 612, Y1: 792}

func object(page, z int, typ model.ObjectType, box model.Rect, fp string) model.Object {
	return model.Object{ID: model.ObjectID(page, z), Type: typ, BBox: box, ZIndex: z, Fingerprint: fp}
}

func TestZeroArea(t *testing.T) {
	objects := []model.Object{
		object(1, 1, model.TypePath, model.Rect{X0: 100, Y0: 100, X1: 100, Y1: 100}, ""),
		object(1, 2, model.TypePath, model.Rect{X0: 100, Y0: 100, X1: 100.01, Y1: 100.01}, ""),
		object(1, 3, model.TypePath, model.Rect{X0: 100, Y0: 100, X1: 110, Y1: 120}, ""),
		object(1, 4, model.TypePath, model.Rect{X0: 10, Y0: 50, X1: 500, Y1: 50}, ""),
	}

	findings := ZeroArea(1, objects, DefaultEpsilon)
	ids := refIDs(findings)
	assert.Contains(t, ids, "p1-o1")
	assert.Contains(t, ids, "p1-o4", "a hairline has no area")
	assert.NotContains(t, ids, "p1-o3")
	for _, f := range findings {
		assert.Equal(t, model.KindZeroArea, f.Kind)
		assert.LessOrEqual(t, f.Area, DefaultEpsilon)
		require.Len(t, f.Objects, 1)
		assert.Equal(t, 1, f.Objects[0].Page)
	}

	// the 0.01 square has area 0.0001 give or take rounding
	assert.Contains(t, refIDs(ZeroArea(1, objects, 0.001)), "p1-o2")
	assert.NotContains(t, refIDs(ZeroArea(1, objects, 0.00001)), "p1-o2")
	assert.Len(t, ZeroArea(1, objects, 1000), 4)
}

func refIDs(findings []model.Finding) []string {
	var ids []string
	for _, f := range findings {
		for _, r := range f.Objects {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// fivePages puts the same header box on pages 1-4 and body text everywhere
func fivePages() []PageObjects {
	var pages []PageObjects
	for p := 1; p <= 5; p++ {
		objs := []model.Object{
			object(p, 1, model.TypeText, model.Rect{X0: 72, Y0: 300, X1: 540, Y1: 500 - 40*float64(p)}, fmt.Sprint("body", p)),
		}
		if p <= 4 {
			objs = append(objs, object(p, 2, model.TypeText, model.Rect{X0: 72, Y0: 750, X1: 300, Y1: 762}, "header"))
		}
		pages = append(pages, PageObjects{Page: p, Box: letter, Objects: objs})
	}
	return pages
}

func TestRepeatedHeader(t *testing.T) {
	findings := RepeatedPatterns(fivePages(), DefaultRepeatedConfig())
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, model.KindRepeatedPattern, f.Kind)
	assert.Equal(t, model.RegionHeader, f.Region)
	assert.Equal(t, []int{1, 2, 3, 4}, f.Pages)
	assert.InDelta(t, 0.8*0.9+0.1, f.Confidence, 1e-9)
	require.Len(t, f.Objects, 4)
	assert.Equal(t, model.ObjectRef{Page: 1, ID: "p1-o2"}, f.Objects[0])
	assert.True(t, f.Touches(4))
	assert.False(t, f.Touches(5))
}

func TestRepeatedFooterWithinTolerance(t *testing.T) {
	var pages []PageObjects
	for p := 1; p <= 3; p++ {
		shift := float64(p) * 0.5
		pages = append(pages, PageObjects{Page: p, Box: letter, Objects: []model.Object{
			object(p, 1, model.TypePath, model.Rect{X0: 72 + shift, Y0: 30, X1: 200 + shift, Y1: 31}, ""),
		}})
	}
	findings := RepeatedPatterns(pages, DefaultRepeatedConfig())
	require.Len(t, findings, 1)
	assert.Equal(t, model.RegionFooter, findings[0].Region)
	assert.InDelta(t, 1.0, findings[0].Confidence, 1e-9)

	cfg := DefaultRepeatedConfig()
	cfg.Tolerance = 0.1
	assert.Empty(t, RepeatedPatterns(pages, cfg))
}

func TestRepeatedEdgeRelative(t *testing.T) {
	// same distance from the top on pages of different height
	pages := []PageObjects{
		{Page: 1, Box: letter, Objects: []model.Object{
			object(1, 1, model.TypeImage, model.Rect{X0: 10, Y0: 742, X1: 50, Y1: 772}, "logo")}},
		{Page: 2, Box: model.Rect{X1: 595, Y1: 842}, Objects: []model.Object{
			object(2, 1, model.TypeImage, model.Rect{X0: 10, Y0: 792, X1: 50, Y1: 822}, "logo")}},
	}
	findings := RepeatedPatterns(pages, DefaultRepeatedConfig())
	require.Len(t, findings, 1)
	// 10 from the left is nearer than 20 from the top
	assert.Equal(t, model.RegionOther, findings[0].Region)
}

func TestRepeatedNearAxisMiddle(t *testing.T) {
	// a centered page number: middle on page 1, nearer the right on page 2
	pages := []PageObjects{
		{Page: 1, Box: letter, Objects: []model.Object{
			object(1, 1, model.TypeText, model.Rect{X0: 296, Y0: 20, X1: 316, Y1: 30}, "")}},
		{Page: 2, Box: letter, Objects: []model.Object{
			object(2, 1, model.TypeText, model.Rect{X0: 297.5, Y0: 20, X1: 317.5, Y1: 30}, "")}},
	}
	first := signatureOf(pages[0].Objects[0], letter, true, 2)
	second := signatureOf(pages[1].Objects[0], letter, true, 2)
	require.Equal(t, edgeMiddle, first.hEdge)
	require.Equal(t, edgeRight, second.hEdge)

	findings := RepeatedPatterns(pages, DefaultRepeatedConfig())
	require.Len(t, findings, 1)
	assert.Equal(t, []int{1, 2}, findings[0].Pages)
	assert.Equal(t, model.RegionFooter, findings[0].Region)

	// far enough to differ from both edges
	pages[1].Objects[0].BBox = model.Rect{X0: 301, Y0: 20, X1: 321, Y1: 30}
	assert.Empty(t, RepeatedPatterns(pages, DefaultRepeatedConfig()))
}

func TestRepeatedContentSignature(t *testing.T) {
	pages := fivePages()
	pages[1].Objects[1].Fingerprint = "other"
	pages[2].Objects[1].Fingerprint = "other"

	// two clusters of two pages each fall under the threshold
	assert.Empty(t, RepeatedPatterns(pages, DefaultRepeatedConfig()))

	cfg := DefaultRepeatedConfig()
	cfg.UseContent = false
	findings := RepeatedPatterns(pages, cfg)
	require.Len(t, findings, 1)
	assert.Equal(t, []int{1, 2, 3, 4}, findings[0].Pages)
}

func TestRepeatedThreshold(t *testing.T) {
	pages := fivePages()
	for i := 2; i < 4; i++ {
		pages[i].Objects = pages[i].Objects[:1]
	}
	// two of five pages
	assert.Empty(t, RepeatedPatterns(pages, DefaultRepeatedConfig()))

	cfg := DefaultRepeatedConfig()
	cfg.MinPageFraction = 0.4
	assert.Len(t, RepeatedPatterns(pages, cfg), 1, "the fraction is inclusive")
}

func TestRepeatedNeedsTwoPages(t *testing.T) {
	single := fivePages()[:1]
	assert.Empty(t, RepeatedPatterns(single, DefaultRepeatedConfig()))

	// two copies on the same page are not a repeat across pages
	p := single[0]
	p.Objects = append(p.Objects, p.Objects[1])
	cfg := DefaultRepeatedConfig()
	cfg.MinPageFraction = 0
	assert.Empty(t, RepeatedPatterns([]PageObjects{p, {Page: 2, Box: letter}}, cfg))
}

func TestRegionTie(t *testing.T) {
	wide := model.Rect{X1: 2000, Y1: 1000}
	sig := signatureOf(model.Object{BBox: model.Rect{X0: 900, Y0: 450, X1: 1100, Y1: 550}}, wide, false, 2)
	// 450 from top and bottom, 900 from the sides
	assert.Equal(t, model.RegionOther, sig.region())

	low := signatureOf(model.Object{BBox: model.Rect{X0: 900, Y0: 440, X1: 1100, Y1: 540}}, wide, false, 2)
	assert.Equal(t, model.RegionFooter, low.region())

	centered := signatureOf(model.Object{BBox: model.Rect{X0: 206, Y0: 386, X1: 406, Y1: 406}}, letter, false, 2)
	assert.Equal(t, model.RegionOther, centered.region())
	assert.Equal(t, edgeMiddle, centered.hEdge)
}

func TestForPage(t *testing.T) {
	findings := RepeatedPatterns(fivePages(), DefaultRepeatedConfig())
	assert.Len(t, ForPage(findings, 2), 1)
	assert.Empty(t, ForPage(findings, 5))
}
