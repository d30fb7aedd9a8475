// Package interpreter turns a page's content stream into paint events.
//
// Interpretation is lazy: Events returns a Sequence and operators run only
// as Next pulls events. A Sequence can be Reset and replayed; both passes
// produce identical events.
//
//	seq := interpreter.New(doc, page).Events()
//	for {
//	    ev, ok := seq.Next()
//	    if !ok {
//	        break
//	    }
//	    fmt.Println(ev.Kind, ev.BBox)
//	}
//	if err := seq.Err(); err != nil {
//	    // a PageDecodeError
//	}
//
// Every operator gets a sequence number, which becomes the Group of the
// events it produces: one event per glyph for text, one per path paint,
// image or shading. Form XObjects run in a nested frame that starts from a
// copy of the caller's state; whatever they do to the state is dropped
// when they end.
//
// A bad operator (unknown, wrong operands, unbalanced Q, missing resource)
// is skipped and recorded as one warning. A stream that ends inside an
// object, or a page whose content cannot be decoded, stops the sequence
// with a PageDecodeError.
package interpreter
