package model

import (
	"fmt"
	"strings"
)

// ObjectType classifies an Object
type ObjectType int

const (
	TypeOther ObjectType = iota
	TypeText
	TypeImage
	TypePath
)

// ObjectTypes lists the types in a fixed order for stable iteration
var ObjectTypes = []ObjectType{TypeText, TypeImage, TypePath, TypeOther}

func (t ObjectType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeImage:
		return "image"
	case TypePath:
		return "path"
	default:
		return "other"
	}
}

// ParseObjectType is the inverse of String
func ParseObjectType(s string) (ObjectType, error) {
	switch strings.ToLower(s) {
	case "text":
		return TypeText, nil
	case "image":
		return TypeImage, nil
	case "path":
		return TypePath, nil
	case "other":
		return TypeOther, nil
	}
	return TypeOther, fmt.Errorf("unknown object type %q", s)
}

func (t ObjectType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ObjectType) UnmarshalText(b []byte) error {
	v, err := ParseObjectType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Object is one classified drawing operation on a page
type Object struct {
	ID     string     `json:"id"`
	Type   ObjectType `json:"type"`
	BBox   Rect       `json:"bbox"`
	ZIndex int        `json:"z_index"`

	// Content is a short human-readable excerpt: the first characters of
	// shown text or the image resource name.
	Content string `json:"content,omitempty"`

	// Fingerprint identifies the drawn content independent of position.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Shapes are the paint events the object was built from, kept for
	// rendering.
	Shapes []Shape `json:"-"`
}

// Shape is renderable geometry with a page-space bounding box
type Shape interface {
	Bounds() Rect
}

// ObjectID formats the id of the object with z-index z on a 1-based page
func ObjectID(page, z int) string {
	return fmt.Sprintf("p%d-o%d", page, z)
}
