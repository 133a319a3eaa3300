package service

import (
	"fmt"
	"strings"
)

// ExportOptions selects what part of the alignment to export.
type ExportOptions struct {
	NodeID    int
	ExtraTips []string // appended after the subtree's tips, deduplicated

	// Column range, 1-indexed inclusive; zero means full width.
	ColStart, ColEnd int

	// Reference-sequence range: residue positions within RefSeq are mapped
	// to alignment columns, overriding ColStart/ColEnd when set.
	RefSeq           string
	RefStart, RefEnd int
}

// ExportAlignment builds FASTA text for the tips under a node, optionally
// sliced to a column range. Tip order follows tree traversal order, with
// extra tips appended; tips absent from the alignment are skipped.
func (s *Service) ExportAlignment(opts ExportOptions) (string, error) {
	if !s.HasAlignment() {
		return "", ErrNoAlignment
	}
	node := s.snap.Node(opts.NodeID)
	if node == nil {
		return "", fmt.Errorf("%w: id %d", ErrNodeNotFound, opts.NodeID)
	}

	tips := node.Tips()
	seen := make(map[string]bool, len(tips))
	for _, t := range tips {
		seen[t] = true
	}
	for _, t := range opts.ExtraTips {
		if !seen[t] {
			tips = append(tips, t)
			seen[t] = true
		}
	}

	sliceStart, sliceEnd := -1, -1
	switch {
	case opts.RefSeq != "" && opts.RefStart > 0 && opts.RefEnd > 0:
		ref, ok := s.alignment.Gapped[opts.RefSeq]
		if !ok {
			return "", fmt.Errorf("%w: reference %s", ErrTipNotFound, opts.RefSeq)
		}
		sliceStart, sliceEnd = refPosToColumns(ref, opts.RefStart, opts.RefEnd)
		if sliceStart < 0 || sliceEnd < 0 {
			return "", fmt.Errorf("reference positions %d-%d out of range for %s",
				opts.RefStart, opts.RefEnd, opts.RefSeq)
		}
	case opts.ColStart > 0 && opts.ColEnd > 0:
		sliceStart, sliceEnd = opts.ColStart-1, opts.ColEnd
	}

	var b strings.Builder
	for _, tip := range tips {
		seq, ok := s.alignment.Gapped[tip]
		if !ok {
			continue
		}
		if sliceStart >= 0 && sliceEnd >= 0 {
			seq = sliceColumns(seq, sliceStart, sliceEnd)
		}
		b.WriteByte('>')
		b.WriteString(tip)
		b.WriteByte('\n')
		for i := 0; i < len(seq); i += 80 {
			end := i + 80
			if end > len(seq) {
				end = len(seq)
			}
			b.WriteString(seq[i:end])
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// refPosToColumns maps 1-indexed residue positions in a gapped reference
// sequence to 0-indexed alignment column bounds (exclusive end). Returns
// (-1, -1) when the positions fall outside the reference.
func refPosToColumns(refGapped string, refStart, refEnd int) (int, int) {
	colStart, colEnd := -1, -1
	residue := 0
	for col := 0; col < len(refGapped); col++ {
		if refGapped[col] == '-' {
			continue
		}
		residue++
		if residue == refStart && colStart < 0 {
			colStart = col
		}
		if residue == refEnd {
			colEnd = col + 1
			break
		}
	}
	if colStart < 0 || colEnd < 0 {
		return -1, -1
	}
	return colStart, colEnd
}

func sliceColumns(seq string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if start > len(seq) {
		start = len(seq)
	}
	if end > len(seq) {
		end = len(seq)
	}
	if end < start {
		end = start
	}
	return seq[start:end]
}
