package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/treebrowse/pkg/config"
	"github.com/vanderheijden86/treebrowse/pkg/export"
	"github.com/vanderheijden86/treebrowse/pkg/layout"
	"github.com/vanderheijden86/treebrowse/pkg/loader"
	"github.com/vanderheijden86/treebrowse/pkg/service"
	"github.com/vanderheijden86/treebrowse/pkg/session"
	"github.com/vanderheijden86/treebrowse/pkg/tui"
	"github.com/vanderheijden86/treebrowse/pkg/version"
	"github.com/vanderheijden86/treebrowse/pkg/view"
	"github.com/vanderheijden86/treebrowse/pkg/watcher"
)

func main() {
	treePath := flag.String("tree", "", "Newick tree file to browse (required)")
	alignmentPath := flag.String("alignment", "", "Optional FASTA alignment matching the tree's tips")
	speciesDir := flag.String("species-dir", "", "Optional directory of per-species FASTA files")
	mode := flag.String("mode", "", "Initial layout mode: rectangular, circular or unrooted")
	exportPath := flag.String("export", "", "Render one snapshot to this path (svg/png) and exit")
	exportFormat := flag.String("format", "", "Export format override: svg or png")
	noWatch := flag.Bool("no-watch", false, "Disable reload-on-change for the tree file")
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: treebrowse -tree FILE [options]")
		fmt.Println("\nAn interactive phylogenetic tree browser.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("treebrowse %s\n", version.Version)
		os.Exit(0)
	}

	if *treePath == "" && flag.NArg() > 0 {
		*treePath = flag.Arg(0)
	}
	if *treePath == "" {
		fmt.Fprintln(os.Stderr, "Error: -tree is required")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults
		cfg = config.DefaultConfig()
	}

	inputs := loader.Inputs{
		TreePath:      *treePath,
		AlignmentPath: *alignmentPath,
		SpeciesDir:    *speciesDir,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	data, err := loader.Load(ctx, inputs)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tree: %v\n", err)
		os.Exit(1)
	}

	ctrl := view.NewController(service.New(data), cfg)
	if *mode != "" {
		ctrl.SetMode(layout.ParseMode(*mode))
	}

	// Non-interactive use: render one snapshot and exit. Also the fallback
	// when stdout is not a terminal.
	if *exportPath != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		path := *exportPath
		if path == "" {
			path = "tree-snapshot.svg"
		}
		snap := ctrl.Snapshot()
		err := export.SaveTreeSnapshot(export.TreeSnapshotOptions{
			Path:     path,
			Format:   *exportFormat,
			Scene:    ctrl.Render(),
			DataHash: snap.DataHash,
			TipCount: snap.TipCount,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d tips)\n", path, snap.TipCount)
		return
	}

	store, err := session.OpenDefault()
	if err != nil {
		// Non-fatal: the browser works without session persistence.
		fmt.Fprintf(os.Stderr, "Warning: session store unavailable: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	var w *watcher.Watcher
	if !*noWatch {
		w, err = watcher.New(*treePath)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file watching disabled: %v\n", err)
			w = nil
		} else {
			defer w.Stop()
		}
	}

	m := tui.NewModel(tui.Options{
		Controller: ctrl,
		Config:     cfg,
		Store:      store,
		Watcher:    w,
		Inputs:     inputs,
		ExportBase: strings.TrimSuffix(*treePath, ".nwk"),
	})

	if err := runTUIProgram(m); err != nil {
		fmt.Printf("Error running treebrowse: %v\n", err)
		os.Exit(1)
	}
}

func runTUIProgram(m tui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set TB_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("TB_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	return err
}
