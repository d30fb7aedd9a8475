package render

import "github.com/dimdasci/pdfs-api/model"

// Predicate selects objects for an overlay. i is the object's index in the
// page's object slice.
type Predicate func(i int, obj model.Object) bool

// ByType selects objects of type t
func ByType(t model.ObjectType) Predicate {
	return func(_ int, obj model.Object) bool { return obj.Type == t }
}

// ByLayer selects the members of l
func ByLayer(l model.Layer) Predicate {
	members := make(map[int]bool, len(l.Objects))
	for _, i := range l.Objects {
		members[i] = true
	}
	return func(i int, _ model.Object) bool { return members[i] }
}

// ByBucket selects the members of every layer in bucket
func ByBucket(layers []model.Layer, bucket int) Predicate {
	members := map[int]bool{}
	for _, l := range layers {
		if l.Bucket != bucket {
			continue
		}
		for _, i := range l.Objects {
			members[i] = true
		}
	}
	return func(i int, _ model.Object) bool { return members[i] }
}

// And selects objects every predicate selects
func And(preds ...Predicate) Predicate {
	return func(i int, obj model.Object) bool {
		for _, p := range preds {
			if !p(i, obj) {
				return false
			}
		}
		return true
	}
}
