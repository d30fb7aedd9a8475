package contentstream

import (
	"errors"
	"io"
	"testing"

	"github.com/dimdasci/pdfs-api/core"
)

// TestParseSimpleOperator tests parsing a simple operator with no operands
func TestParseSimpleOperator(t *testing.T) {
	ops, err := NewParser([]byte("q")).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Operator != "q" || len(ops[0].Operands) != 0 {
		t.Errorf("unexpected operation %+v", ops[0])
	}
}

// TestParseOperands tests operand types and indices
func TestParseOperands(t *testing.T) {
	input := []byte("1 0 0 1 72 720 cm /F1 12 Tf [(He) -120 (llo)] TJ <48656c6c6f> Tj true null d0")
	ops, err := NewParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []struct {
		op    string
		count int
	}{
		{"cm", 6}, {"Tf", 2}, {"TJ", 1}, {"Tj", 1}, {"d0", 2},
	}
	if len(ops) != len(want) {
		t.Fatalf("expected %d operations, got %d", len(want), len(ops))
	}
	for i, w := range want {
		if ops[i].Operator != w.op || len(ops[i].Operands) != w.count {
			t.Errorf("op %d: expected %s with %d operands, got %s with %d", i, w.op, w.count, ops[i].Operator, len(ops[i].Operands))
		}
		if ops[i].Index != i {
			t.Errorf("op %d: expected index %d, got %d", i, i, ops[i].Index)
		}
	}

	if name, ok := ops[1].Operands[0].(core.Name); !ok || name != "F1" {
		t.Errorf("expected /F1, got %v", ops[1].Operands[0])
	}
	arr, ok := ops[2].Operands[0].(core.Array)
	if !ok || len(arr) != 3 {
		t.Fatalf("expected 3-element array, got %v", ops[2].Operands[0])
	}
	if s, ok := ops[3].Operands[0].(core.String); !ok || string(s) != "Hello" {
		t.Errorf("expected decoded hex string, got %v", ops[3].Operands[0])
	}
}

// TestParseDictOperand tests marked-content property lists
func TestParseDictOperand(t *testing.T) {
	ops, err := NewParser([]byte("/Span <</ActualText (x) /MCID 3>> BDC EMC")).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(ops) != 2 || ops[0].Operator != "BDC" {
		t.Fatalf("unexpected operations %+v", ops)
	}
	d, ok := ops[0].Operands[1].(core.Dict)
	if !ok {
		t.Fatalf("expected dict operand, got %T", ops[0].Operands[1])
	}
	if mcid, _ := d.GetInt("MCID"); mcid != 3 {
		t.Errorf("expected MCID 3, got %d", mcid)
	}
}

// TestInlineImage tests BI/ID/EI handling
func TestInlineImage(t *testing.T) {
	input := []byte("q BI /W 2 /H 2 /BPC 8 /CS /G ID \x00\xffEI\x10 EI Q")
	ops, err := NewParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(ops) != 3 {
		t.Fatalf("expected q BI Q, got %d operations", len(ops))
	}
	bi := ops[1]
	if bi.Operator != "BI" || len(bi.Operands) != 1 {
		t.Fatalf("unexpected inline image operation %+v", bi)
	}
	d := bi.Operands[0].(core.Dict)
	if w, _ := d.GetInt("W"); w != 2 {
		t.Errorf("expected /W 2, got %d", w)
	}
	// "EI" inside the samples is not preceded by whitespace
	if string(bi.Data) != "\x00\xffEI\x10" {
		t.Errorf("unexpected inline data %q", bi.Data)
	}
	if ops[2].Operator != "Q" || ops[2].Index != 2 {
		t.Errorf("expected Q at index 2, got %+v", ops[2])
	}
}

// TestInlineImageLengthHint tests the /L entry
func TestInlineImageLengthHint(t *testing.T) {
	input := []byte("BI /W 1 /H 4 /CS /G /BPC 8 /L 4 ID a EI EI n")
	ops, err := NewParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(ops) != 2 || string(ops[0].Data) != "a EI" {
		t.Fatalf("expected 4 data bytes then n, got %+v", ops)
	}
}

// TestSyntaxErrorRecovery tests that bad input is skipped with an error
func TestSyntaxErrorRecovery(t *testing.T) {
	p := NewParser([]byte("1 0 0 RG ) 0 0 10 10 re f"))
	var got []string
	var syntax int
	for {
		op, err := p.Next()
		if err == io.EOF {
			break
		}
		var syn *SyntaxError
		if errors.As(err, &syn) {
			syntax++
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		got = append(got, op.Operator)
	}
	if syntax != 1 {
		t.Errorf("expected 1 syntax error, got %d", syntax)
	}
	if len(got) != 3 || got[0] != "RG" || got[1] != "re" || got[2] != "f" {
		t.Errorf("expected RG re f, got %v", got)
	}
}

// TestTruncated tests streams ending inside an object
func TestTruncated(t *testing.T) {
	for _, input := range []string{
		"BT (unterminated",
		"[(a) (b)",
		"<</A 1",
		"<4142",
		"BI /W 1 /H 1 ID \x00\x00",
		"BI /W 1",
	} {
		ops, err := NewParser([]byte(input)).Parse()
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("%q: expected ErrTruncated, got %v (%d ops)", input, err, len(ops))
		}
	}
}

// TestReset tests that a second pass yields the same operations
func TestReset(t *testing.T) {
	p := NewParser([]byte("q 1 0 0 1 5 5 cm 0 0 m 10 10 l S Q"))
	first, err := p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	p.Reset()
	second, err := p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected %d operations after reset, got %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Operator != second[i].Operator || first[i].Index != second[i].Index || first[i].Pos != second[i].Pos {
			t.Errorf("op %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// TestEmptyStream tests immediate EOF
func TestEmptyStream(t *testing.T) {
	if _, err := NewParser(nil).Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
	ops, err := NewParser([]byte("  % only a comment\n")).Parse()
	if err != nil || len(ops) != 0 {
		t.Errorf("expected no operations, got %d (%v)", len(ops), err)
	}
}
