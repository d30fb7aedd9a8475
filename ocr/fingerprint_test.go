package ocr

import (
	"errors"
	"image"
	"strings"
	"testing"
)

type fakeRecognizer struct {
	text string
	err  error
	got  []byte
}

func (f *fakeRecognizer) RecognizeImage(data []byte) (string, error) {
	f.got = data
	return f.text, f.err
}

func TestFingerprint(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	r := &fakeRecognizer{text: "ACME  Corp\n"}
	a, ok, err := Fingerprint(r, img)
	if err != nil || !ok {
		t.Fatalf("unexpected result ok=%v err=%v", ok, err)
	}
	if !strings.HasPrefix(a, Prefix) {
		t.Errorf("expected %q prefix, got %q", Prefix, a)
	}
	if len(r.got) < 8 || string(r.got[1:4]) != "PNG" {
		t.Error("recognizer should receive PNG bytes")
	}

	b, _, _ := Fingerprint(&fakeRecognizer{text: "acme corp"}, img)
	if a != b {
		t.Error("case and spacing should not change the fingerprint")
	}
}

func TestFingerprintEmpty(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	if _, ok, err := Fingerprint(&fakeRecognizer{text: " \n"}, img); ok || err != nil {
		t.Errorf("blank text should give no fingerprint, ok=%v err=%v", ok, err)
	}
	if _, _, err := Fingerprint(&fakeRecognizer{err: ErrOCRNotEnabled}, img); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("expected recognizer error, got %v", err)
	}
}

func TestTextFingerprintNFKC(t *testing.T) {
	a, _ := TextFingerprint("ﬁnance")
	b, _ := TextFingerprint("finance")
	if a != b {
		t.Error("ligatures should normalize")
	}
}
