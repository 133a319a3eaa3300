package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Snapshot is an immutable, self-contained representation of one loaded
// tree. Once created it never changes; structural operations (subtree
// focus, reroot, reload) build a new Snapshot, so the view controller can
// retain old snapshots for undo and "back to full tree" without aliasing.
type Snapshot struct {
	Root *TreeNode

	// Lookup tables built once per snapshot. IDs are only valid within a
	// single snapshot; every snapshot replacement rebuilds them from scratch.
	byID     map[int]*TreeNode
	parentID map[int]int

	TipCount  int
	NodeCount int
	CreatedAt time.Time
	DataHash  string // deterministic hash of tree content for cache validation
}

// NewSnapshot indexes the tree rooted at root. The id->node index covers
// every node; parents are tracked externally to the nodes so the same node
// objects can be shared by derived trees.
func NewSnapshot(root *TreeNode) (*Snapshot, error) {
	if root == nil {
		return nil, fmt.Errorf("nil tree root")
	}
	s := &Snapshot{
		Root:      root,
		byID:      make(map[int]*TreeNode),
		parentID:  make(map[int]int),
		CreatedAt: time.Now(),
	}
	var walk func(n, parent *TreeNode) error
	walk = func(n, parent *TreeNode) error {
		if _, dup := s.byID[n.ID]; dup {
			return fmt.Errorf("duplicate node id %d", n.ID)
		}
		s.byID[n.ID] = n
		if parent != nil {
			s.parentID[n.ID] = parent.ID
		}
		s.NodeCount++
		if n.IsTip() {
			s.TipCount++
		}
		for _, c := range n.Children {
			if err := walk(c, n); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, nil); err != nil {
		return nil, err
	}
	s.DataHash = computeDataHash(root)
	return s, nil
}

// Node returns the node with the given id, or nil if not in this snapshot.
func (s *Snapshot) Node(id int) *TreeNode {
	if s == nil {
		return nil
	}
	return s.byID[id]
}

// Parent returns the parent of the node with the given id, or nil for the
// root and for unknown ids.
func (s *Snapshot) Parent(id int) *TreeNode {
	if s == nil {
		return nil
	}
	pid, ok := s.parentID[id]
	if !ok {
		return nil
	}
	return s.byID[pid]
}

// IsEmpty returns true if the snapshot holds no tree.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || s.Root == nil
}

// Age returns how long ago this snapshot was created.
func (s *Snapshot) Age() time.Duration {
	if s == nil {
		return 0
	}
	return time.Since(s.CreatedAt)
}

// TipNames returns all tip names in traversal order.
func (s *Snapshot) TipNames() []string {
	if s.IsEmpty() {
		return nil
	}
	return s.Root.Tips()
}

// Renumber assigns fresh sequential ids (pre-order from 0) to every node of
// the subtree rooted at root. Used when deriving a new snapshot from a deep
// copy, since ids are only meaningful within one snapshot.
func Renumber(root *TreeNode) {
	next := 0
	root.Walk(func(n *TreeNode) {
		n.ID = next
		next++
	})
}

// computeDataHash generates a deterministic hash of the tree content.
// Children are hashed in traversal order so the hash is stable across
// renders but changes on any structural operation.
func computeDataHash(root *TreeNode) string {
	h := sha256.New()
	root.Walk(func(n *TreeNode) {
		h.Write([]byte(strconv.Itoa(n.ID)))
		h.Write([]byte{0})
		h.Write([]byte(n.Name))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(n.BranchLength, 'g', -1, 64)))
		h.Write([]byte{0})
		if n.Support != nil {
			h.Write([]byte(strconv.FormatFloat(*n.Support, 'g', -1, 64)))
		}
		h.Write([]byte{0})
		h.Write([]byte(n.Species))
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(len(n.Children))))
		h.Write([]byte{1})
	})
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// SpeciesSets computes, for every node id, the set of species present among
// its tip descendants. Tips with no species annotation count as "unknown".
func (s *Snapshot) SpeciesSets() map[int]map[string]bool {
	sets := make(map[int]map[string]bool, s.NodeCount)
	var walk func(n *TreeNode) map[string]bool
	walk = func(n *TreeNode) map[string]bool {
		set := make(map[string]bool)
		if n.IsTip() {
			sp := n.Species
			if sp == "" {
				sp = "unknown"
			}
			set[sp] = true
		} else {
			for _, c := range n.Children {
				for sp := range walk(c) {
					set[sp] = true
				}
			}
		}
		sets[n.ID] = set
		return set
	}
	walk(s.Root)
	return sets
}

// SortedSpecies returns the sorted species list present in the snapshot.
func (s *Snapshot) SortedSpecies() []string {
	set := make(map[string]bool)
	s.Root.Walk(func(n *TreeNode) {
		if n.IsTip() && n.Species != "" {
			set[n.Species] = true
		}
	})
	out := make([]string, 0, len(set))
	for sp := range set {
		out = append(out, sp)
	}
	sort.Strings(out)
	return out
}
