package loader

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/treebrowse/pkg/debug"
	"github.com/vanderheijden86/treebrowse/pkg/model"
)

// Inputs names the data files of one browsing session. AlignmentPath and
// SpeciesDir are optional.
type Inputs struct {
	TreePath      string
	AlignmentPath string
	SpeciesDir    string
}

// Data is everything loaded for one session: the indexed tree snapshot,
// the optional alignment, and the optional species map (already applied to
// the tree's tips).
type Data struct {
	Snapshot  *model.Snapshot
	Alignment *Alignment
	Species   *SpeciesMap
}

// Load reads and parses all inputs. The tree and the alignment load in
// parallel; the species map needs the parsed tree and runs after it.
func Load(ctx context.Context, in Inputs) (*Data, error) {
	start := time.Now()
	defer func() { debug.LogTiming("loader.Load", time.Since(start)) }()

	var (
		root      *model.TreeNode
		alignment *Alignment
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := os.ReadFile(in.TreePath)
		if err != nil {
			return fmt.Errorf("reading tree: %w", err)
		}
		root, err = ParseNewick(string(raw))
		if err != nil {
			return fmt.Errorf("parsing tree %s: %w", in.TreePath, err)
		}
		return nil
	})
	if in.AlignmentPath != "" {
		g.Go(func() error {
			var err error
			alignment, err = LoadFasta(in.AlignmentPath)
			if err != nil {
				return fmt.Errorf("loading alignment %s: %w", in.AlignmentPath, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var species *SpeciesMap
	if in.SpeciesDir != "" {
		var err error
		species, err = BuildSpeciesMap(in.SpeciesDir, root)
		if err != nil {
			return nil, err
		}
		species.Annotate(root)
	}

	snap, err := model.NewSnapshot(root)
	if err != nil {
		return nil, fmt.Errorf("indexing tree: %w", err)
	}
	debug.Log("loaded tree: %d nodes, %d tips, %d sequences",
		snap.NodeCount, snap.TipCount, alignment.Len())

	return &Data{Snapshot: snap, Alignment: alignment, Species: species}, nil
}
