package model

import "fmt"

// Layer is a (type, bucket) group of a page's objects and its overlay
// raster. Objects holds indices into the page's object slice, in z order.
type Layer struct {
	Type        ObjectType `json:"type"`
	Bucket      int        `json:"bucket"`
	Raster      string     `json:"raster,omitempty"`
	ObjectCount int        `json:"object_count"`
	Objects     []int      `json:"objects"`
}

// Key names the layer uniquely within a page
func (l Layer) Key() string {
	return fmt.Sprintf("%s-%d", l.Type, l.Bucket)
}

// MinZ returns the smallest z-index in the layer given the page objects
func (l Layer) MinZ(objects []Object) int {
	if len(l.Objects) == 0 {
		return 0
	}
	return objects[l.Objects[0]].ZIndex
}
