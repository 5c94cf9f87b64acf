// Package walker lists the subdirectories of a tree.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
)

// Unbounded disables the depth limit. Any negative depth does the same.
const Unbounded = -1

// ListSubfolders returns the absolute paths of the directories below root, depth-first
// in the order the filesystem enumerates them. depth 1 lists immediate children only,
// depth 0 lists nothing and a negative depth descends without limit.
// Symbolic links to directories are listed like directories. A link is not descended
// into when it points back at a directory on the current path.
func ListSubfolders(root string, depth int) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	out := []string{}
	if depth == 0 {
		return out, nil
	}
	if err := walk(abs, 1, depth, []os.FileInfo{info}, &out); err != nil {
		return out, err
	}
	return out, nil
}

func walk(dir string, level, depth int, ancestors []os.FileInfo, out *[]string) error {
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", dir, err)
	}
	// File.ReadDir keeps the enumeration order; os.ReadDir would sort.
	entries, err := f.ReadDir(-1)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	for _, e := range entries {
		sub := filepath.Join(dir, e.Name())
		info, ok := dirInfo(sub, e)
		if !ok {
			continue
		}
		*out = append(*out, sub)
		if depth > 0 && level >= depth {
			continue
		}
		if onPath(ancestors, info) {
			continue
		}
		chain := append(ancestors[:len(ancestors):len(ancestors)], info)
		if err := walk(sub, level+1, depth, chain, out); err != nil {
			return err
		}
	}
	return nil
}

// dirInfo resolves e to a directory, following a symbolic link to its target.
// Broken links and links to files report false.
func dirInfo(path string, e os.DirEntry) (os.FileInfo, bool) {
	if e.Type()&os.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			return nil, false
		}
		return info, true
	}
	if !e.IsDir() {
		return nil, false
	}
	info, err := e.Info()
	if err != nil {
		return nil, false
	}
	return info, true
}

func onPath(ancestors []os.FileInfo, info os.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(a, info) {
			return true
		}
	}
	return false
}
