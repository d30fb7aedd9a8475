package core

import (
	"errors"
	"testing"
)

// TestParseObject tests parsing of every direct object type
func TestParseObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"null", "null"},
		{"true", "true"},
		{"42", "42"},
		{"-1.25", "-1.25"},
		{"(text)", "text"},
		{"/Name", "/Name"},
		{"[1 2 0 R /X]", "[1 2 0 R /X]"},
		{"<< /B 2 /A 1 >>", "<</A 1 /B 2>>"},
		{"12 0 R", "12 0 R"},
	}
	for _, tt := range tests {
		obj, err := NewParser([]byte(tt.in)).ParseObject()
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if obj.String() != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.in, tt.want, obj.String())
		}
	}
}

// TestParseIntegerNotReference tests that "1 2" without R stays two integers
func TestParseIntegerNotReference(t *testing.T) {
	p := NewParser([]byte("1 2 re"))
	a, err := p.ParseObject()
	if err != nil || a != Int(1) {
		t.Fatalf("expected 1, got %v (%v)", a, err)
	}
	b, err := p.ParseObject()
	if err != nil || b != Int(2) {
		t.Fatalf("expected 2, got %v (%v)", b, err)
	}
	_, err = p.ParseObject()
	if !IsKeyword(err) {
		t.Errorf("expected keyword error, got %v", err)
	}
}

// TestParseTruncated tests unterminated containers
func TestParseTruncated(t *testing.T) {
	for _, in := range []string{"[1 2", "<< /A 1", "<< /A (x"} {
		_, err := NewParser([]byte(in)).ParseObject()
		if !errors.Is(err, ErrUnexpectedEOF) {
			t.Errorf("%q: expected ErrUnexpectedEOF, got %v", in, err)
		}
	}
}

type lengthResolver map[int]Object

func (r lengthResolver) ResolveReference(ref IndirectRef) (Object, error) {
	if o, ok := r[ref.Number]; ok {
		return o, nil
	}
	return nil, errors.New("missing")
}

// TestParseIndirectStream tests direct, indirect and wrong stream lengths
func TestParseIndirectStream(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"direct", "5 0 obj\n<< /Length 5 >>\nstream\r\nhello\nendstream\nendobj"},
		{"indirect", "5 0 obj\n<< /Length 9 0 R >>\nstream\nhello\nendstream\nendobj"},
		{"wrong length", "5 0 obj\n<< /Length 99 >>\nstream\nhello\nendstream\nendobj"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser([]byte(tt.in))
			p.SetReferenceResolver(lengthResolver{9: Int(5)})
			obj, err := p.ParseIndirectObject()
			if err != nil {
				t.Fatalf("ParseIndirectObject failed: %v", err)
			}
			if obj.Ref != (IndirectRef{Number: 5}) {
				t.Errorf("unexpected ref %v", obj.Ref)
			}
			s, ok := obj.Object.(*Stream)
			if !ok {
				t.Fatalf("expected stream, got %T", obj.Object)
			}
			if string(s.Data) != "hello" {
				t.Errorf("expected data %q, got %q", "hello", s.Data)
			}
		})
	}
}

// TestDictAccessors tests typed getters
func TestDictAccessors(t *testing.T) {
	d := Dict{"I": Int(3), "R": Real(1.5), "N": Name("X"), "A": Array{Int(1), Real(2.5)}}
	if v, ok := d.GetNumber("I"); !ok || v != 3 {
		t.Errorf("GetNumber(I) = %v, %v", v, ok)
	}
	if v, ok := d.GetInt("R"); !ok || v != 1 {
		t.Errorf("GetInt(R) = %v, %v", v, ok)
	}
	if n, ok := d.GetName("N"); !ok || n != "X" {
		t.Errorf("GetName(N) = %v, %v", n, ok)
	}
	a, _ := d.GetArray("A")
	if nums, ok := a.Numbers(); !ok || nums[1] != 2.5 {
		t.Errorf("Numbers = %v, %v", nums, ok)
	}
	if _, ok := d.GetDict("I"); ok {
		t.Error("GetDict on an Int should fail")
	}
}
