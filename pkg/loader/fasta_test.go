package loader

import (
	"strings"
	"testing"
)

const sampleFasta = `>seq1 description ignored
MKT-LL
IS--KR
>seq2
MKV
>seq3
---
`

func TestParseFasta(t *testing.T) {
	a, err := ParseFasta(strings.NewReader(sampleFasta))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.Len() != 3 {
		t.Fatalf("sequence count = %d, want 3", a.Len())
	}
	if got := strings.Join(a.Order, ","); got != "seq1,seq2,seq3" {
		t.Errorf("order = %s", got)
	}
	if a.Gapped["seq1"] != "MKT-LLIS--KR" {
		t.Errorf("gapped seq1 = %q", a.Gapped["seq1"])
	}
	if a.Ungapped["seq1"] != "MKTLLISKR" {
		t.Errorf("ungapped seq1 = %q", a.Ungapped["seq1"])
	}
	if a.Ungapped["seq3"] != "" {
		t.Errorf("all-gap sequence should ungap to empty, got %q", a.Ungapped["seq3"])
	}
}

func TestParseFastaHeaderToken(t *testing.T) {
	a, err := ParseFasta(strings.NewReader(">tip_1 extra tokens here\nMK\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := a.Gapped["tip_1"]; !ok {
		t.Errorf("name should be the first header token, got %v", a.Order)
	}
}

func TestParseFastaEmptyHeader(t *testing.T) {
	if _, err := ParseFasta(strings.NewReader(">\nMK\n")); err == nil {
		t.Error("nameless header must be an error")
	}
}

func TestParseFastaEmptyInput(t *testing.T) {
	a, err := ParseFasta(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.Len() != 0 {
		t.Errorf("empty input should yield no sequences, got %d", a.Len())
	}
}

func TestTipLengths(t *testing.T) {
	a, err := ParseFasta(strings.NewReader(sampleFasta))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	lengths := a.TipLengths()
	if lengths["seq1"] != 9 || lengths["seq2"] != 3 || lengths["seq3"] != 0 {
		t.Errorf("lengths = %v", lengths)
	}
}
