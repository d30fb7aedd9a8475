//go:build !ocr

package ocr

// Client stands in for the Tesseract client when built without the ocr tag.
// Every call fails with ErrOCRNotEnabled.
type Client struct{}

// New always fails with ErrOCRNotEnabled
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close does nothing; it accepts a nil client
func (c *Client) Close() error { return nil }

func (c *Client) RecognizeImage([]byte) (string, error) { return "", ErrOCRNotEnabled }

func (c *Client) SetLanguage(string) error { return ErrOCRNotEnabled }

func (c *Client) SetPageSegMode(PageSegMode) error { return ErrOCRNotEnabled }
