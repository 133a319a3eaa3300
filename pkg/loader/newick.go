// Package loader parses the tree and alignment inputs of treebrowse:
// Newick trees, FASTA alignments, and per-species FASTA directories used
// to tag tree tips with their source species.
package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vanderheijden86/treebrowse/pkg/model"
)

// ParseNewick parses a Newick string into a tree. Node ids are assigned
// sequentially in completion order (children before their parent), so tips
// carry low ids and the root carries the highest id in the snapshot.
//
// Internal-node labels that parse as numbers become support values;
// anything else becomes the node name. A malformed branch length is treated
// as 0, not an error.
func ParseNewick(s string) (*model.TreeNode, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ";")
	if s == "" {
		return nil, fmt.Errorf("empty newick string")
	}
	p := &newickParser{input: s}
	root, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("trailing input at offset %d", p.pos)
	}
	return root, nil
}

type newickParser struct {
	input  string
	pos    int
	nextID int
}

func (p *newickParser) parseNode() (*model.TreeNode, error) {
	var children []*model.TreeNode
	if p.pos < len(p.input) && p.input[p.pos] == '(' {
		p.pos++ // skip '('
		for {
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			children = append(children, child)
			if p.pos < len(p.input) && p.input[p.pos] == ',' {
				p.pos++
				continue
			}
			break
		}
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return nil, fmt.Errorf("unbalanced parentheses at offset %d", p.pos)
		}
		p.pos++
	}

	label := p.readUntil(",):;")

	branchLength := 0.0
	if p.pos < len(p.input) && p.input[p.pos] == ':' {
		p.pos++
		if v, err := strconv.ParseFloat(p.readUntil(",);"), 64); err == nil {
			branchLength = v
		}
	}

	node := &model.TreeNode{
		ID:           p.nextID,
		BranchLength: branchLength,
		Children:     children,
	}
	p.nextID++

	// Internal-node labels are usually bootstrap support.
	if len(children) > 0 {
		if sup, err := strconv.ParseFloat(label, 64); err == nil {
			node.Support = &sup
		} else {
			node.Name = label
		}
	} else {
		node.Name = label
	}
	return node, nil
}

func (p *newickParser) readUntil(stop string) string {
	start := p.pos
	for p.pos < len(p.input) && !strings.ContainsRune(stop, rune(p.input[p.pos])) {
		p.pos++
	}
	return p.input[start:p.pos]
}
