// Package classify groups paint events into page objects and assigns their
// z-index.
//
// Events produced by one operator (the same Group) become one object whose
// box is the union of the event boxes. Events outside the clip only count
// when the whole object is outside it. Objects are numbered 1, 2, 3... in
// the order of their first event, which is the paint order and therefore
// the stacking order.
package classify

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/dimdasci/pdfs-api/interpreter"
	"github.com/dimdasci/pdfs-api/model"
	"golang.org/x/text/unicode/norm"
)

// ContentLength is the number of characters kept as text content
const ContentLength = 64

// ImageFingerprint computes the fingerprint of an image event. It returns
// false to fall back to hashing the image bytes.
type ImageFingerprint func(ev interpreter.PaintEvent) (string, bool)

type options struct {
	image ImageFingerprint
}

// Option configures Classify
type Option func(*options)

// WithImageFingerprint sets how image objects are fingerprinted
func WithImageFingerprint(fn ImageFingerprint) Option {
	return func(o *options) { o.image = fn }
}

// TypeOf maps an event kind to an object type
func TypeOf(k interpreter.Kind) model.ObjectType {
	switch k {
	case interpreter.ShowText:
		return model.TypeText
	case interpreter.DrawImage, interpreter.InlineImage:
		return model.TypeImage
	case interpreter.PaintPath:
		return model.TypePath
	}
	return model.TypeOther
}

// Classify builds the objects of a 1-based page from its events
func Classify(page int, events []interpreter.PaintEvent, opts ...Option) []model.Object {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var objects []model.Object
	var text []*strings.Builder
	// visible records whether an object has an event inside the clip
	var visible []bool
	byGroup := map[int]int{}
	for _, ev := range events {
		i, seen := byGroup[ev.Group]
		if !seen {
			i = len(objects)
			byGroup[ev.Group] = i
			z := i + 1
			objects = append(objects, model.Object{
				ID:     model.ObjectID(page, z),
				Type:   TypeOf(ev.Kind),
				BBox:   ev.BBox,
				ZIndex: z,
			})
			text = append(text, &strings.Builder{})
			visible = append(visible, !ev.Clipped)
		}
		obj := &objects[i]
		switch {
		case ev.Clipped && visible[i]:
		case !ev.Clipped && !visible[i]:
			obj.BBox = ev.BBox
			visible[i] = true
		default:
			obj.BBox = obj.BBox.Union(ev.BBox)
		}
		obj.Shapes = append(obj.Shapes, ev)
		switch ev.Kind {
		case interpreter.ShowText:
			text[i].WriteString(ev.Text)
		case interpreter.DrawImage:
			obj.Content = ev.Name
			obj.Fingerprint = o.imageFingerprint(ev, ev.Image.Data)
		case interpreter.InlineImage:
			obj.Content = "inline"
			obj.Fingerprint = o.imageFingerprint(ev, ev.InlineData)
		case interpreter.Shade:
			obj.Content = ev.Name
		}
	}

	for i := range objects {
		if objects[i].Type != model.TypeText {
			continue
		}
		s := norm.NFKC.String(text[i].String())
		objects[i].Content = truncate(strings.TrimSpace(s), ContentLength)
		if strings.TrimSpace(s) != "" {
			objects[i].Fingerprint = digest([]byte(s))
		}
	}
	return objects
}

// FromSequence drains seq and classifies its events
func FromSequence(page int, seq *interpreter.Sequence, opts ...Option) ([]model.Object, []model.Warning, error) {
	events, warnings, err := interpreter.Collect(seq)
	return Classify(page, events, opts...), warnings, err
}

func (o options) imageFingerprint(ev interpreter.PaintEvent, data []byte) string {
	if o.image != nil {
		if fp, ok := o.image(ev); ok {
			return fp
		}
	}
	if len(data) == 0 {
		return ""
	}
	return digest(data)
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
