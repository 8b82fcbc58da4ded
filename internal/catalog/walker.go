package catalog

import (
	"context"
	"log/slog"
	"path"
	"sort"

	"github.com/joe/coverframe/internal/natural"
	"github.com/joe/coverframe/pkg/filesystem"
)

// PrunedDir is a directory skipped because an exclude pattern matched it.
type PrunedDir struct {
	Path    string
	Pattern string
}

// SkippedDir is a subdirectory whose listing failed. Its subtree contributes
// nothing, and the walk carries on with its siblings.
type SkippedDir struct {
	Path string
	Err  error
}

// WalkReport describes one walk beyond its candidate list.
type WalkReport struct {
	Root     string
	Listed   int
	Rejected int
	Pruned   []PrunedDir
	Skipped  []SkippedDir
}

// Walker enumerates a remote tree for one match rule at a time.
type Walker struct {
	lister filesystem.Lister
	log    *slog.Logger
}

// NewWalker creates a Walker listing through lister. A nil log discards output.
func NewWalker(lister filesystem.Lister, log *slog.Logger) *Walker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Walker{lister: lister, log: log}
}

// frame is one directory on the walk stack with its sorted entries and the
// index of the next entry to visit.
type frame struct {
	dir     string
	entries []filesystem.Entry
	next    int
}

// Walk lists the matcher's root depth first and returns the accepted leaves.
// Siblings are visited in natural order and a subdirectory is walked completely
// at the point it appears among its siblings, so a fixed tree always yields the
// same sequence.
//
// An excluded root yields no candidates and no listing call. A root that
// can't be listed fails with *RootError. Subdirectories that can't be listed
// are recorded in the report and skipped.
func (w *Walker) Walk(ctx context.Context, m *Matcher) ([]string, WalkReport, error) {
	root := cleanRoot(m.Rule().Root)
	report := WalkReport{Root: root}
	candidates := make([]string, 0)

	if pattern, ok := m.ExcludedDir(root); ok {
		w.log.Debug("root excluded", "root", root, "pattern", pattern)
		report.Pruned = append(report.Pruned, PrunedDir{Path: root, Pattern: pattern})

		return candidates, report, nil
	}

	entries, err := w.lister.List(ctx, root)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, report, ctxErr
		}

		return nil, report, &RootError{Root: root, Err: err}
	}

	report.Listed++

	stack := []frame{{dir: root, entries: sortEntries(entries)}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		top := &stack[len(stack)-1]
		if top.next >= len(top.entries) {
			stack = stack[:len(stack)-1]
			continue
		}

		entry := top.entries[top.next]
		top.next++

		entryPath := filesystem.Join(top.dir, entry.Name)

		if !entry.IsDir {
			decision := m.MatchLeaf(entryPath)
			if decision.Accepted() {
				candidates = append(candidates, entryPath)
				continue
			}

			report.Rejected++
			w.log.Debug("leaf rejected", "path", entryPath, "reason", decision.Reason.String(), "pattern", decision.Pattern)

			continue
		}

		if pattern, ok := m.ExcludedDir(entryPath); ok {
			w.log.Debug("excluding directory", "path", entryPath, "pattern", pattern)
			report.Pruned = append(report.Pruned, PrunedDir{Path: entryPath, Pattern: pattern})

			continue
		}

		subEntries, err := w.lister.List(ctx, entryPath)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, report, ctxErr
			}

			w.log.Warn("skipping unreadable directory", "path", entryPath, "error", err)
			report.Skipped = append(report.Skipped, SkippedDir{Path: entryPath, Err: err})

			continue
		}

		report.Listed++

		// top is invalid after this append
		stack = append(stack, frame{dir: entryPath, entries: sortEntries(subEntries)})
	}

	return candidates, report, nil
}

// sortEntries returns entries sorted by name in natural order.
func sortEntries(entries []filesystem.Entry) []filesystem.Entry {
	sorted := append([]filesystem.Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return natural.Less(sorted[i].Name, sorted[j].Name)
	})

	return sorted
}

// cleanRoot normalizes a configured root. "." names the server's login
// directory.
func cleanRoot(root string) string {
	return path.Clean(root)
}
