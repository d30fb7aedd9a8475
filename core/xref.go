package core

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// EntryKind distinguishes the three cross-reference entry types
type EntryKind int

const (
	EntryFree EntryKind = iota
	EntryInUse
	EntryCompressed
)

// XRefEntry locates one object. In-use entries carry a byte offset;
// compressed entries name the object stream and the index inside it.
type XRefEntry struct {
	Kind        EntryKind
	Offset      int64
	Generation  int
	StreamObj   int
	StreamIndex int
}

// XRefTable maps object numbers to their locations, merged across all
// incremental updates (newest wins), with the merged trailer.
type XRefTable struct {
	Entries map[int]XRefEntry
	Trailer Dict
}

// NewXRefTable returns an empty table
func NewXRefTable() *XRefTable {
	return &XRefTable{Entries: map[int]XRefEntry{}, Trailer: Dict{}}
}

// add keeps the first entry seen for a number; sections are read newest first.
func (t *XRefTable) add(num int, e XRefEntry) {
	if _, ok := t.Entries[num]; !ok {
		t.Entries[num] = e
	}
}

func (t *XRefTable) mergeTrailer(d Dict) {
	for k, v := range d {
		if !t.Trailer.Has(k) {
			t.Trailer[k] = v
		}
	}
}

// FindStartXRef returns the offset recorded after the last startxref
// keyword. Line endings may be CR, LF or CRLF.
func FindStartXRef(data []byte) (int64, error) {
	tail := data
	if len(tail) > 2048 {
		tail = tail[len(tail)-2048:]
	}
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, errors.New("startxref not found")
	}
	rest := tail[idx+len("startxref"):]
	i := 0
	for i < len(rest) && IsWhitespace(rest[i]) {
		i++
	}
	j := i
	for j < len(rest) && isDigit(rest[j]) {
		j++
	}
	if i == j {
		return 0, errors.New("startxref has no offset")
	}
	off, err := strconv.ParseInt(string(rest[i:j]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("startxref offset: %w", err)
	}
	return off, nil
}

// LoadXRef reads every cross-reference section reachable from startxref,
// following /Prev and hybrid /XRefStm links.
func LoadXRef(data []byte) (*XRefTable, error) {
	start, err := FindStartXRef(data)
	if err != nil {
		return nil, err
	}
	table := NewXRefTable()
	visited := map[int64]bool{}
	pending := []int64{start}
	for len(pending) > 0 {
		off := pending[0]
		pending = pending[1:]
		if visited[off] {
			continue
		}
		visited[off] = true
		if off < 0 || off >= int64(len(data)) {
			return nil, fmt.Errorf("xref offset %d outside file of %d bytes", off, len(data))
		}

		trailer, err := table.readSection(data, int(off))
		if err != nil {
			return nil, fmt.Errorf("xref section at %d: %w", off, err)
		}
		table.mergeTrailer(trailer)

		// XRefStm entries take precedence over the table that names them.
		if stm, ok := trailer.GetInt("XRefStm"); ok && !visited[int64(stm)] {
			visited[int64(stm)] = true
			if _, err := table.readSection(data, int(stm)); err != nil {
				return nil, fmt.Errorf("xref stream at %d: %w", stm, err)
			}
		}
		if prev, ok := trailer.GetInt("Prev"); ok {
			pending = append(pending, int64(prev))
		}
	}
	delete(table.Trailer, "Prev")
	delete(table.Trailer, "XRefStm")
	if !table.Trailer.Has("Root") {
		return nil, errors.New("trailer has no /Root")
	}
	return table, nil
}

func (t *XRefTable) readSection(data []byte, off int) (Dict, error) {
	lx := NewLexer(data)
	lx.SetPos(off)
	tok, err := lx.Next()
	if err != nil {
		return nil, err
	}
	if tok.Type == TokenKeyword && string(tok.Value) == "xref" {
		return t.readTable(lx)
	}
	return t.readStream(data, off)
}

// readTable parses a classic "xref" section and its trailer dictionary.
func (t *XRefTable) readTable(lx *Lexer) (Dict, error) {
	p := &Parser{lexer: lx}
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenKeyword && string(tok.Value) == "trailer" {
			obj, err := p.ParseObject()
			if err != nil {
				return nil, fmt.Errorf("trailer: %w", err)
			}
			d, ok := obj.(Dict)
			if !ok {
				return nil, fmt.Errorf("trailer is %s, not a dictionary", obj.Type())
			}
			return d, nil
		}
		countTok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type != TokenInteger || countTok.Type != TokenInteger {
			return nil, fmt.Errorf("bad subsection header at offset %d", tok.Pos)
		}
		first, _ := strconv.Atoi(string(tok.Value))
		count, _ := strconv.Atoi(string(countTok.Value))
		for i := 0; i < count; i++ {
			offTok, _ := lx.Next()
			genTok, _ := lx.Next()
			kindTok, err := lx.Next()
			if err != nil || kindTok.Type != TokenKeyword {
				return nil, fmt.Errorf("bad entry %d in subsection %d", i, first)
			}
			off, _ := strconv.ParseInt(string(offTok.Value), 10, 64)
			gen, _ := strconv.Atoi(string(genTok.Value))
			e := XRefEntry{Kind: EntryFree, Generation: gen}
			if string(kindTok.Value) == "n" {
				e = XRefEntry{Kind: EntryInUse, Offset: off, Generation: gen}
			}
			t.add(first+i, e)
		}
	}
}

// readStream parses a PDF 1.5 cross-reference stream object.
func (t *XRefTable) readStream(data []byte, off int) (Dict, error) {
	p := NewParserAt(data, off)
	obj, err := p.ParseIndirectObject()
	if err != nil {
		return nil, err
	}
	s, ok := obj.Object.(*Stream)
	if !ok {
		return nil, errors.New("neither an xref table nor an xref stream")
	}
	if typ, _ := s.Dict.GetName("Type"); typ != "XRef" {
		return nil, fmt.Errorf("stream /Type is %q, not XRef", typ)
	}
	wArr, ok := s.Dict.GetArray("W")
	if !ok || len(wArr) != 3 {
		return nil, errors.New("xref stream /W must have three entries")
	}
	w, ok := wArr.Numbers()
	if !ok {
		return nil, errors.New("xref stream /W is not numeric")
	}
	w0, w1, w2 := int(w[0]), int(w[1]), int(w[2])
	stride := w0 + w1 + w2
	if stride <= 0 {
		return nil, errors.New("xref stream /W sums to zero")
	}

	var index []int
	if idx, ok := s.Dict.GetArray("Index"); ok {
		nums, _ := idx.Numbers()
		for _, n := range nums {
			index = append(index, int(n))
		}
	} else if size, ok := s.Dict.GetInt("Size"); ok {
		index = []int{0, int(size)}
	}

	raw, err := s.Decode()
	if err != nil {
		return nil, err
	}

	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		first, count := index[i], index[i+1]
		for j := 0; j < count && pos+stride <= len(raw); j++ {
			row := raw[pos : pos+stride]
			pos += stride
			kind := int64(1) // type defaults to 1 when its width is 0
			if w0 > 0 {
				kind = field(row[:w0])
			}
			f2 := field(row[w0 : w0+w1])
			f3 := field(row[w0+w1:])
			switch kind {
			case 0:
				t.add(first+j, XRefEntry{Kind: EntryFree, Generation: int(f3)})
			case 1:
				t.add(first+j, XRefEntry{Kind: EntryInUse, Offset: f2, Generation: int(f3)})
			case 2:
				t.add(first+j, XRefEntry{Kind: EntryCompressed, StreamObj: int(f2), StreamIndex: int(f3)})
			}
		}
	}
	return s.Dict, nil
}

func field(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

var objHeader = regexp.MustCompile(`(?m)(\d+)\s+(\d+)\s+obj\b`)

// recoverable are the trailer keys a cross-reference stream dictionary can
// supply to a rebuilt trailer
var recoverable = []string{"Root", "Encrypt", "Info", "ID"}

// Reconstruct rebuilds a table by scanning for "n g obj" headers. It is
// the fallback for files whose xref data is damaged. The trailer is taken
// from the last trailer dictionary; keys it lacks come from the
// cross-reference stream dictionaries found during the scan, newest first,
// and /Root finally from the first catalog.
func Reconstruct(data []byte) (*XRefTable, error) {
	table := &XRefTable{Entries: map[int]XRefEntry{}, Trailer: Dict{}}
	for _, m := range objHeader.FindAllSubmatchIndex(data, -1) {
		if m[0] > 0 && !IsWhitespace(data[m[0]-1]) && !IsDelimiter(data[m[0]-1]) {
			continue
		}
		num, _ := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, _ := strconv.Atoi(string(data[m[4]:m[5]]))
		// later definitions override earlier ones
		table.Entries[num] = XRefEntry{Kind: EntryInUse, Offset: int64(m[0]), Generation: gen}
	}
	if len(table.Entries) == 0 {
		return nil, errors.New("no objects found")
	}

	if idx := bytes.LastIndex(data, []byte("trailer")); idx >= 0 {
		p := NewParserAt(data, idx+len("trailer"))
		if obj, err := p.ParseObject(); err == nil {
			if d, ok := obj.(Dict); ok {
				table.Trailer = d
			}
		}
	}

	nums := make([]int, 0, len(table.Entries))
	for num := range table.Entries {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	var catalog *IndirectRef
	var xrefs []*IndirectObject
	for _, num := range nums {
		e := table.Entries[num]
		obj, err := NewParserAt(data, int(e.Offset)).ParseIndirectObject()
		if err != nil {
			continue
		}
		switch v := obj.Object.(type) {
		case *Stream:
			if typ, _ := v.Dict.GetName("Type"); typ == "XRef" {
				xrefs = append(xrefs, obj)
			}
		case Dict:
			if typ, _ := v.GetName("Type"); typ == "Catalog" && catalog == nil {
				catalog = &IndirectRef{Number: num, Generation: e.Generation}
			}
		}
	}
	sort.Slice(xrefs, func(i, j int) bool {
		return table.Entries[xrefs[i].Ref.Number].Offset > table.Entries[xrefs[j].Ref.Number].Offset
	})
	for _, x := range xrefs {
		dict := x.Object.(*Stream).Dict
		for _, key := range recoverable {
			if !table.Trailer.Has(key) && dict.Has(key) {
				table.Trailer[key] = dict.Get(key)
			}
		}
	}
	if !table.Trailer.Has("Root") && catalog != nil {
		table.Trailer["Root"] = *catalog
	}
	if !table.Trailer.Has("Root") {
		return nil, errors.New("no catalog found")
	}
	return table, nil
}
