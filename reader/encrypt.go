package reader

import (
	"fmt"
	"strings"
)

// describeEncryption summarises the /Encrypt dictionary for error messages.
// Decryption is never attempted.
func (d *Document) describeEncryption() error {
	dict, ok, err := d.resolver.Dict(d.xref.Trailer.Get("Encrypt"))
	if err != nil || !ok {
		return fmt.Errorf("document is encrypted")
	}

	var parts []string
	if f, ok := dict.GetName("Filter"); ok {
		parts = append(parts, "filter "+string(f))
	}
	if v, ok := dict.GetInt("V"); ok {
		parts = append(parts, fmt.Sprintf("V %d", v))
	}
	if r, ok := dict.GetInt("R"); ok {
		parts = append(parts, fmt.Sprintf("R %d", r))
	}
	length := 40
	if l, ok := dict.GetInt("Length"); ok {
		length = int(l)
	}
	parts = append(parts, fmt.Sprintf("%d-bit key", length))
	return fmt.Errorf("document is encrypted (%s)", strings.Join(parts, ", "))
}
