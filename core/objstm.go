package core

import (
	"fmt"
	"strconv"
)

// ObjectStream holds the decoded contents of a /Type /ObjStm stream.
type ObjectStream struct {
	data    []byte
	first   int
	numbers []int
	offsets []int
}

// NewObjectStream decodes s and reads its header of object number and
// offset pairs.
func NewObjectStream(s *Stream) (*ObjectStream, error) {
	if typ, _ := s.Dict.GetName("Type"); typ != "ObjStm" {
		return nil, fmt.Errorf("object stream /Type is %q", typ)
	}
	n, ok := s.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream has no valid /N")
	}
	first, ok := s.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream has no valid /First")
	}
	data, err := s.Decode()
	if err != nil {
		return nil, fmt.Errorf("object stream: %w", err)
	}
	if int(first) > len(data) {
		return nil, fmt.Errorf("object stream /First %d beyond %d decoded bytes", first, len(data))
	}

	st := &ObjectStream{data: data, first: int(first)}
	lx := NewLexer(data[:first])
	for i := 0; i < int(n); i++ {
		numTok, _ := lx.Next()
		offTok, _ := lx.Next()
		if numTok.Type != TokenInteger || offTok.Type != TokenInteger {
			return nil, fmt.Errorf("object stream header truncated at entry %d", i)
		}
		num, _ := strconv.Atoi(string(numTok.Value))
		off, _ := strconv.Atoi(string(offTok.Value))
		st.numbers = append(st.numbers, num)
		st.offsets = append(st.offsets, off)
	}
	return st, nil
}

// Len returns the number of objects in the stream
func (st *ObjectStream) Len() int { return len(st.numbers) }

// ObjectAt parses the object stored at index and returns it with its
// object number.
func (st *ObjectStream) ObjectAt(index int) (Object, int, error) {
	if index < 0 || index >= len(st.offsets) {
		return nil, 0, fmt.Errorf("object stream index %d out of range [0,%d)", index, len(st.offsets))
	}
	p := NewParserAt(st.data, st.first+st.offsets[index])
	obj, err := p.ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("object stream index %d: %w", index, err)
	}
	return obj, st.numbers[index], nil
}

// Object returns the object with the given number
func (st *ObjectStream) Object(num int) (Object, error) {
	for i, n := range st.numbers {
		if n == num {
			obj, _, err := st.ObjectAt(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("object %d not in object stream", num)
}
