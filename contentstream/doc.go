// Package contentstream splits decoded PDF content streams into operations.
//
// A content stream is a sequence of operands followed by an operator:
//
//	p := contentstream.NewParser(data)
//	for {
//	    op, err := p.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// Operands are core objects (numbers, strings, names, arrays and
// dictionaries). Each operation carries its 0-based index, which later
// stages use as the operator group id. Inline images (BI ... ID ... EI) are
// returned as one "BI" operation holding the image dictionary and the raw
// sample bytes.
//
// Malformed input between operators is reported as a *SyntaxError and
// skipped. A stream that ends inside an object yields an error wrapping
// ErrTruncated.
package contentstream
