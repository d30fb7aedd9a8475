package font

import "strings"

// Standard 14 font metrics for the printable ASCII range, in 1/1000 em.
// Oblique and italic faces share the upright tables.

var helveticaWidths = [95]float64{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var helveticaBoldWidths = [95]float64{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333, 584, 584, 584, 611,
	975, 722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556,
	333, 556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611,
	611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

var timesWidths = [95]float64{
	250, 333, 408, 500, 500, 833, 778, 180, 333, 333, 500, 564, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 278, 278, 564, 564, 564, 444,
	921, 722, 667, 667, 722, 611, 556, 722, 722, 333, 389, 722, 611, 889, 722, 722,
	556, 722, 667, 556, 611, 722, 722, 944, 722, 722, 611, 333, 278, 333, 469, 500,
	333, 444, 500, 444, 500, 444, 333, 500, 500, 278, 278, 500, 278, 778, 500, 500,
	500, 500, 333, 389, 278, 500, 500, 722, 500, 500, 444, 480, 200, 480, 541,
}

var timesBoldWidths = [95]float64{
	250, 333, 555, 500, 500, 1000, 833, 278, 333, 333, 500, 570, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 333, 333, 570, 570, 570, 500,
	930, 722, 667, 722, 722, 667, 611, 778, 778, 389, 500, 778, 667, 944, 722, 778,
	611, 778, 722, 556, 667, 722, 722, 1000, 722, 722, 667, 333, 278, 333, 581, 500,
	333, 500, 556, 444, 556, 444, 333, 500, 556, 278, 333, 556, 278, 833, 556, 500,
	556, 556, 444, 389, 333, 556, 500, 722, 500, 500, 444, 394, 220, 394, 520,
}

type standardMetrics struct {
	widths          *[95]float64
	fixed           float64
	ascent, descent float64
}

var standardFonts = map[string]standardMetrics{
	"Helvetica":             {widths: &helveticaWidths, ascent: 718, descent: -207},
	"Helvetica-Bold":        {widths: &helveticaBoldWidths, ascent: 718, descent: -207},
	"Helvetica-Oblique":     {widths: &helveticaWidths, ascent: 718, descent: -207},
	"Helvetica-BoldOblique": {widths: &helveticaBoldWidths, ascent: 718, descent: -207},
	"Times-Roman":           {widths: &timesWidths, ascent: 683, descent: -217},
	"Times-Bold":            {widths: &timesBoldWidths, ascent: 683, descent: -217},
	"Times-Italic":          {widths: &timesWidths, ascent: 683, descent: -217},
	"Times-BoldItalic":      {widths: &timesBoldWidths, ascent: 683, descent: -217},
	"Courier":               {fixed: 600, ascent: 629, descent: -157},
	"Courier-Bold":          {fixed: 600, ascent: 629, descent: -157},
	"Courier-Oblique":       {fixed: 600, ascent: 629, descent: -157},
	"Courier-BoldOblique":   {fixed: 600, ascent: 629, descent: -157},
	"Symbol":                {fixed: 500, ascent: 1010, descent: -293},
	"ZapfDingbats":          {fixed: 788, ascent: 820, descent: -143},
}

var standardAliases = map[string]string{
	"Arial":                    "Helvetica",
	"Arial,Bold":               "Helvetica-Bold",
	"Arial,Italic":             "Helvetica-Oblique",
	"Arial,BoldItalic":         "Helvetica-BoldOblique",
	"ArialMT":                  "Helvetica",
	"Arial-BoldMT":             "Helvetica-Bold",
	"TimesNewRoman":            "Times-Roman",
	"TimesNewRoman,Bold":       "Times-Bold",
	"TimesNewRomanPSMT":        "Times-Roman",
	"TimesNewRomanPS-BoldMT":   "Times-Bold",
	"CourierNew":               "Courier",
	"CourierNewPSMT":           "Courier",
	"CourierNew,Bold":          "Courier-Bold",
}

// lookupStandard finds metrics by base font name, ignoring a subset tag
// such as "ABCDEF+".
func lookupStandard(base string) (standardMetrics, bool) {
	if i := strings.IndexByte(base, '+'); i == 6 {
		base = base[i+1:]
	}
	if alias, ok := standardAliases[base]; ok {
		base = alias
	}
	m, ok := standardFonts[base]
	return m, ok
}

// width returns the advance of r, or 0 when the table has no entry.
func (m standardMetrics) width(r rune) float64 {
	if m.fixed > 0 {
		return m.fixed
	}
	if r >= 32 && r <= 126 {
		return m.widths[r-32]
	}
	return 0
}
