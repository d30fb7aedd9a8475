// Package core provides low-level PDF parsing primitives and object types.
//
// # Object Types
//
// PDF defines eight basic object types, all implemented as types satisfying the
// Object interface: [Null], [Bool], [Int], [Real], [String], [Name], [Array]
// and [Dict]. [Stream] pairs a dictionary with encoded bytes and
// [IndirectRef] names an indirect object.
//
// # Parsing
//
// [Lexer] tokenizes an in-memory buffer; many lexers may read the same
// buffer concurrently. [Parser] builds objects from those tokens and parses
// indirect object definitions, resolving indirect stream lengths through a
// [ReferenceResolver].
//
// # Cross-Reference Data
//
// [LoadXRef] follows startxref, /Prev and /XRefStm through classic tables and
// PDF 1.5 cross-reference streams into one [XRefTable]. [Reconstruct]
// rebuilds a table by scanning for object headers when that fails.
// [ObjectStream] reads objects packed inside /ObjStm streams.
//
// # Stream Decoding
//
// [Stream.Decode] applies the filter chain from the stream dictionary using
// the internal filters package.
package core
