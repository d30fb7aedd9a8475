// Package reader loads a PDF document from memory.
//
// [Load] validates the byte stream and returns a read-only [Document]:
//
//	doc, err := reader.Load(data, reader.WithMaxPages(500))
//	switch {
//	case errors.Is(err, pdferr.ErrEncrypted):
//	    // password protected
//	case err != nil:
//	    // corrupt or too many pages
//	}
//	defer doc.Close()
//	page, _ := doc.Page(0)
//
// Load fails with the pdferr kinds CorruptDocument, Encrypted and
// PageLimitExceeded. Encrypted files are refused rather than decrypted.
//
// A Document is safe for concurrent use by multiple goroutines: objects are
// parsed from the immutable input slice and cached behind a lock.
//
// The package also decodes image XObjects and inline images into Go images
// ([Document.LoadImage], [Document.LoadInlineImage]) for rasterization.
package reader
