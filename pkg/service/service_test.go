package service_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/vanderheijden86/treebrowse/pkg/loader"
	"github.com/vanderheijden86/treebrowse/pkg/model"
	"github.com/vanderheijden86/treebrowse/pkg/service"
	"github.com/vanderheijden86/treebrowse/pkg/testutil"
)

const testAlignment = `>A
MKRT-A
>B
MK-TLA
>C
GGKRAA
>D
GG-TAA
>E
MMMM-M
`

// newTestService builds a session over the five-tip fixture with species
// Pvul on {A, B} and Atha on {C, D, E}.
func newTestService(t *testing.T) *service.Service {
	t.Helper()
	root := testutil.Internal(0,
		testutil.Internal(1,
			testutil.Internal(1, testutil.Tip("A", 1), testutil.Tip("B", 1)),
			testutil.Tip("C", 2),
		),
		testutil.Internal(1, testutil.Tip("D", 2), testutil.Tip("E", 3)),
	)
	root.Walk(func(n *model.TreeNode) {
		switch n.Name {
		case "A", "B":
			n.Species = "Pvul"
		case "C", "D", "E":
			n.Species = "Atha"
		}
	})
	model.Renumber(root)
	snap := testutil.MustSnapshot(t, root)

	aln, err := loader.ParseFasta(strings.NewReader(testAlignment))
	if err != nil {
		t.Fatalf("alignment fixture: %v", err)
	}
	sm := &loader.SpeciesMap{
		Species:       []string{"Atha", "Pvul"},
		SpeciesToTips: map[string][]string{"Pvul": {"A", "B"}, "Atha": {"C", "D", "E"}},
		TipToSpecies: map[string]string{
			"A": "Pvul", "B": "Pvul", "C": "Atha", "D": "Atha", "E": "Atha",
		},
	}
	return service.New(&loader.Data{Snapshot: snap, Alignment: aln, Species: sm})
}

func TestMotifMatchesRegex(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.MotifMatches("KR", service.MotifRegex)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// Matching runs over ungapped sequences, so B's "MK-TLA" does not
	// contain KR even though K and T are adjacent columns.
	if !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("KR matches = %v, want [A C]", got)
	}
}

func TestMotifMatchesCaseInsensitive(t *testing.T) {
	svc := newTestService(t)
	got, err := svc.MotifMatches("kr", service.MotifRegex)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("kr matches = %v, want [A C]", got)
	}
}

func TestMotifMatchesProsite(t *testing.T) {
	svc := newTestService(t)
	got, err := svc.MotifMatches("G-G-x-x-A", service.MotifProsite)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"C", "D"}) {
		t.Errorf("prosite matches = %v, want [C D]", got)
	}
}

func TestMotifMatchesErrors(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.MotifMatches("[", service.MotifRegex); !errors.Is(err, service.ErrInvalidPattern) {
		t.Errorf("bad regex: err = %v", err)
	}
	if _, err := svc.MotifMatches("A-{}", service.MotifProsite); !errors.Is(err, service.ErrInvalidPattern) {
		t.Errorf("bad prosite: err = %v", err)
	}

	snap := testutil.MustSnapshot(t, testutil.BalancedTree(2))
	bare := service.New(&loader.Data{Snapshot: snap})
	if _, err := bare.MotifMatches("KR", service.MotifRegex); !errors.Is(err, service.ErrNoAlignment) {
		t.Errorf("no alignment: err = %v", err)
	}
}

func TestNodesBySpecies(t *testing.T) {
	svc := newTestService(t)
	snap := svc.Tree()

	both := svc.NodesBySpecies([]string{"Pvul", "Atha"}, nil)
	// Nodes covering both species: the root and the (A, B, C) clade.
	want := map[int]bool{snap.Root.ID: true, snap.Root.Children[0].ID: true}
	if len(both) != len(want) {
		t.Fatalf("NodesBySpecies = %v, want ids %v", both, want)
	}
	for _, id := range both {
		if !want[id] {
			t.Errorf("unexpected node id %d", id)
		}
	}

	onlyPvul := svc.NodesBySpecies([]string{"Pvul"}, []string{"Atha"})
	// Excluding Atha leaves the pure-Pvul nodes: tips A, B and their parent.
	if len(onlyPvul) != 3 {
		t.Errorf("pure Pvul nodes = %v, want 3 ids", onlyPvul)
	}
	for _, id := range onlyPvul {
		for _, name := range snap.Node(id).Tips() {
			if name != "A" && name != "B" {
				t.Errorf("node %d contains excluded tip %s", id, name)
			}
		}
	}
}

func TestNodeTips(t *testing.T) {
	svc := newTestService(t)
	snap := svc.Tree()

	tips, err := svc.NodeTips(snap.Root.Children[1].ID)
	if err != nil {
		t.Fatalf("node tips: %v", err)
	}
	if !reflect.DeepEqual(tips, []string{"D", "E"}) {
		t.Errorf("tips = %v", tips)
	}
	if _, err := svc.NodeTips(9999); !errors.Is(err, service.ErrNodeNotFound) {
		t.Errorf("unknown node: err = %v", err)
	}
}

func TestTipSequence(t *testing.T) {
	svc := newTestService(t)
	seq, err := svc.TipSequence("A")
	if err != nil {
		t.Fatalf("tip sequence: %v", err)
	}
	if seq != "MKRT-A" {
		t.Errorf("sequence = %q, want gapped form", seq)
	}
	if _, err := svc.TipSequence("nope"); !errors.Is(err, service.ErrTipNotFound) {
		t.Errorf("unknown tip: err = %v", err)
	}
}

func TestSpeciesListing(t *testing.T) {
	svc := newTestService(t)
	res := svc.Species()
	if !reflect.DeepEqual(res.Species, []string{"Atha", "Pvul"}) {
		t.Errorf("species = %v", res.Species)
	}
	if got := res.SpeciesToTips["Atha"]; len(got) != 3 {
		t.Errorf("Atha tips = %v", got)
	}

	snap := testutil.MustSnapshot(t, testutil.BalancedTree(2))
	bare := service.New(&loader.Data{Snapshot: snap})
	if res := bare.Species(); len(res.Species) != 0 || res.SpeciesToTips == nil {
		t.Errorf("bare session species = %+v", res)
	}
}
