// Package batch processes many documents through one shared pipeline: a
// walker expands the input arguments to PDF files, a worker queue fans them
// out, and a processor runs open, extract, validate, export and persist for
// each file in isolation.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/freightdocs/bol-extractor/constants"
)

// WalkStats aggregates what the walker saw.
type WalkStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// CollectFiles expands each argument to the PDF files it names. An argument
// may be a single file, a directory (walked recursively), or a glob
// pattern. Hidden files and directories are skipped when skipHidden is set.
// The result is deduplicated and sorted; unreadable entries are counted,
// not fatal.
func CollectFiles(args []string, skipHidden bool) ([]string, WalkStats, error) {
	var stats WalkStats
	seen := map[string]struct{}{}
	var files []string

	keep := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
		stats.Matched++
	}

	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			continue
		}

		paths := []string{arg}
		if strings.ContainsAny(arg, "*?[") {
			matched, err := filepath.Glob(arg)
			if err != nil {
				return nil, stats, fmt.Errorf("bad pattern %q: %w", arg, err)
			}
			paths = matched
		}

		for _, path := range paths {
			info, err := os.Stat(path)
			if err != nil {
				stats.Scanned++
				stats.Failed++
				continue
			}
			if !info.IsDir() {
				stats.Scanned++
				if wanted(path, skipHidden) {
					keep(path)
				}
				continue
			}

			walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				stats.Scanned++
				if err != nil {
					stats.Failed++
					return nil // continue walking
				}
				if skipHidden && isHidden(p) && p != path {
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				if d.IsDir() {
					return nil
				}
				if wanted(p, skipHidden) {
					keep(p)
				}
				return nil
			})
			if walkErr != nil {
				return nil, stats, fmt.Errorf("walk %s: %w", path, walkErr)
			}
		}
	}

	sort.Strings(files)
	return files, stats, nil
}

func wanted(path string, skipHidden bool) bool {
	if skipHidden && isHidden(path) {
		return false
	}
	return constants.IsAllowedExt(filepath.Ext(path))
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
