package loader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vanderheijden86/treebrowse/pkg/model"
)

// SpeciesMap relates tree tips to their source species, derived from the
// FASTA filenames of a per-species genome directory.
type SpeciesMap struct {
	Species       []string            // sorted
	SpeciesToTips map[string][]string // sorted tip names per species
	TipToSpecies  map[string]string
}

// refSpecies maps reference-genome filenames to readable species tags.
var refSpecies = map[string]string{
	"Pvul218cds":  "Pvul",
	"TAIR10cds":   "TAIR",
	"Vung469cds":  "Vung",
	"Zmarina_668_v3.1.cds_primaryTranscriptOnly": "Zmarina",
}

// speciesFromFilename derives the species tag from a FASTA filename stem:
// "new_genomes.Aameric_YS121.v1.cds" yields "Aameric_YS121"; reference
// genomes use a fixed mapping and everything else falls back to the stem.
func speciesFromFilename(stem string) string {
	if rest, ok := strings.CutPrefix(stem, "new_genomes."); ok {
		if i := strings.IndexByte(rest, '.'); i >= 0 {
			return rest[:i]
		}
		return rest
	}
	if sp, ok := refSpecies[stem]; ok {
		return sp
	}
	return stem
}

// BuildSpeciesMap scans dir for .fa/.fasta files, reads their headers and
// cross-references them against the tree's tip names. Species whose files
// contain no tree tips are dropped.
func BuildSpeciesMap(dir string, root *model.TreeNode) (*SpeciesMap, error) {
	treeTips := make(map[string]bool)
	root.Walk(func(n *model.TreeNode) {
		if n.IsTip() {
			treeTips[n.Name] = true
		}
	})

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading species dir: %w", err)
	}

	sm := &SpeciesMap{
		SpeciesToTips: make(map[string][]string),
		TipToSpecies:  make(map[string]string),
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".fa" && ext != ".fasta" {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ext)
		species := speciesFromFilename(stem)

		headers, err := fastaHeaders(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}

		var matching []string
		for h := range headers {
			if treeTips[h] {
				matching = append(matching, h)
			}
		}
		if len(matching) == 0 {
			continue
		}
		sort.Strings(matching)
		sm.SpeciesToTips[species] = matching
		for _, tip := range matching {
			sm.TipToSpecies[tip] = species
		}
	}

	for sp := range sm.SpeciesToTips {
		sm.Species = append(sm.Species, sp)
	}
	sort.Strings(sm.Species)
	return sm, nil
}

// Annotate tags every tip of the tree with its species; tips missing from
// the map are tagged "unknown".
func (sm *SpeciesMap) Annotate(root *model.TreeNode) {
	root.Walk(func(n *model.TreeNode) {
		if !n.IsTip() {
			return
		}
		if sp, ok := sm.TipToSpecies[n.Name]; ok {
			n.Species = sp
		} else {
			n.Species = "unknown"
		}
	})
}

// fastaHeaders returns the set of first-token header names of a FASTA file.
func fastaHeaders(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	headers := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			if name := firstToken(line[1:]); name != "" {
				headers[name] = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return headers, nil
}
