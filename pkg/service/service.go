// Package service implements the data operations the tree browser core
// consumes: species queries, motif search over the protein alignment,
// subtree tip extraction, rerooting and alignment export. All failures are
// plain error values; no operation mutates the tree snapshot it was asked
// about.
package service

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/vanderheijden86/treebrowse/pkg/loader"
	"github.com/vanderheijden86/treebrowse/pkg/model"
)

// Sentinel errors surfaced to the view as non-blocking notices.
var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrTipNotFound    = errors.New("tip not found in alignment")
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrNoAlignment    = errors.New("no alignment loaded")
)

// Service answers data queries against one loaded session.
type Service struct {
	snap      *model.Snapshot
	alignment *loader.Alignment
	species   *loader.SpeciesMap
}

// New builds a Service over loaded session data. Alignment and species may
// be nil.
func New(data *loader.Data) *Service {
	return &Service{
		snap:      data.Snapshot,
		alignment: data.Alignment,
		species:   data.Species,
	}
}

// Tree returns the current full tree snapshot.
func (s *Service) Tree() *model.Snapshot {
	return s.snap
}

// SetTree replaces the snapshot the service answers against, used after a
// reroot or reload.
func (s *Service) SetTree(snap *model.Snapshot) {
	s.snap = snap
}

// HasAlignment reports whether sequence data is available.
func (s *Service) HasAlignment() bool {
	return s.alignment.Len() > 0
}

// SpeciesResult is the species listing for the current session.
type SpeciesResult struct {
	Species       []string            `json:"species"`
	SpeciesToTips map[string][]string `json:"species_to_tips"`
}

// Species lists the known species and their tree tips.
func (s *Service) Species() SpeciesResult {
	if s.species == nil {
		return SpeciesResult{SpeciesToTips: map[string][]string{}}
	}
	return SpeciesResult{
		Species:       s.species.Species,
		SpeciesToTips: s.species.SpeciesToTips,
	}
}

// TipLengths returns the ungapped sequence length per tip, or nil when no
// alignment is loaded.
func (s *Service) TipLengths() map[string]int {
	if s.alignment == nil {
		return nil
	}
	return s.alignment.TipLengths()
}

// MotifKind selects the pattern dialect of a motif search.
type MotifKind string

const (
	MotifRegex   MotifKind = "regex"
	MotifProsite MotifKind = "prosite"
)

// MotifMatches searches the ungapped sequences for a motif pattern and
// returns the sorted matching tip names. A bad pattern returns
// ErrInvalidPattern; existing highlight state is the caller's concern and
// is never touched here.
func (s *Service) MotifMatches(pattern string, kind MotifKind) ([]string, error) {
	if !s.HasAlignment() {
		return nil, ErrNoAlignment
	}
	regexStr := pattern
	if kind == MotifProsite {
		var err error
		regexStr, err = PrositeToRegex(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
	}
	compiled, err := regexp.Compile("(?i)" + regexStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	var matched []string
	for tip, seq := range s.alignment.Ungapped {
		if compiled.MatchString(seq) {
			matched = append(matched, tip)
		}
	}
	sort.Strings(matched)
	return matched, nil
}

// NodesBySpecies returns ids of nodes whose descendant tips include at
// least one tip of every required species and none of any excluded species.
func (s *Service) NodesBySpecies(required, excluded []string) []int {
	sets := s.snap.SpeciesSets()
	exclude := make(map[string]bool, len(excluded))
	for _, sp := range excluded {
		exclude[sp] = true
	}

	var ids []int
	s.snap.Root.Walk(func(n *model.TreeNode) {
		set := sets[n.ID]
		for _, sp := range required {
			if !set[sp] {
				return
			}
		}
		for sp := range set {
			if exclude[sp] {
				return
			}
		}
		ids = append(ids, n.ID)
	})
	return ids
}

// NodeTips returns the descendant tip names of a node in traversal order.
func (s *Service) NodeTips(nodeID int) ([]string, error) {
	node := s.snap.Node(nodeID)
	if node == nil {
		return nil, fmt.Errorf("%w: id %d", ErrNodeNotFound, nodeID)
	}
	return node.Tips(), nil
}

// TipNames returns all alignment sequence names, sorted, for autocomplete.
func (s *Service) TipNames() []string {
	if s.alignment == nil {
		return nil
	}
	names := append([]string(nil), s.alignment.Order...)
	sort.Strings(names)
	return names
}

// TipSequence returns the gapped aligned sequence of one tip.
func (s *Service) TipSequence(name string) (string, error) {
	if !s.HasAlignment() {
		return "", ErrNoAlignment
	}
	seq, ok := s.alignment.Gapped[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTipNotFound, name)
	}
	return seq, nil
}
