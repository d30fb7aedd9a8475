// Package resolver follows indirect references in PDF objects.
//
// [ObjectResolver] resolves shallowly with [ObjectResolver.Resolve] or
// expands a whole object tree with [ObjectResolver.ResolveDeep], detecting
// cycles and bounding depth:
//
//	r := resolver.NewResolver(doc, resolver.WithMaxDepth(50))
//	obj, err := r.Resolve(core.IndirectRef{Number: 5})
//
// [Guard] bounds nested interpretation of resources such as form XObjects
// that may reference themselves.
package resolver
