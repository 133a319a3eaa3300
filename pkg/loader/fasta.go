package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Alignment holds a parsed protein alignment: gapped sequences as read
// from the file, plus ungapped copies used for motif search.
type Alignment struct {
	// Order lists sequence names in file order.
	Order []string
	// Gapped maps name to the aligned sequence, gaps included.
	Gapped map[string]string
	// Ungapped maps name to the sequence with '-' removed.
	Ungapped map[string]string
}

// Len returns the number of sequences.
func (a *Alignment) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Order)
}

// TipLengths returns the ungapped length per sequence name.
func (a *Alignment) TipLengths() map[string]int {
	out := make(map[string]int, len(a.Ungapped))
	for name, seq := range a.Ungapped {
		out[name] = len(seq)
	}
	return out
}

// ParseFasta reads a FASTA stream. The sequence name is the first
// whitespace-delimited token of the header line.
func ParseFasta(r io.Reader) (*Alignment, error) {
	a := &Alignment{
		Gapped:   make(map[string]string),
		Ungapped: make(map[string]string),
	}
	var current string
	var chunks []string

	flush := func() {
		if current == "" {
			return
		}
		seq := strings.Join(chunks, "")
		a.Gapped[current] = seq
		a.Ungapped[current] = strings.ReplaceAll(seq, "-", "")
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.HasPrefix(line, ">") {
			flush()
			current = firstToken(line[1:])
			if current == "" {
				return nil, fmt.Errorf("fasta header without a name")
			}
			a.Order = append(a.Order, current)
			chunks = chunks[:0]
			continue
		}
		if current != "" {
			chunks = append(chunks, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading fasta: %w", err)
	}
	flush()
	return a, nil
}

// LoadFasta reads a FASTA file from disk.
func LoadFasta(path string) (*Alignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening alignment: %w", err)
	}
	defer f.Close()
	return ParseFasta(f)
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
