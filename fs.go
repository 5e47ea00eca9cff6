package spritepack

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// isVectorFile reports whether name carries an SVG or SVGZ extension.
func isVectorFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".svg", ".svgz":
		return true
	}
	return false
}

// isHidden reports whether the file name starts with a dot.
func isHidden(name string) bool {
	return strings.HasPrefix(filepath.Base(name), ".")
}

// FindVectorPaths returns the paths of all SVG and SVGZ files within dir,
// ignoring hidden files. With recursive set it descends into
// sub-directories as well.
func FindVectorPaths(dir string, recursive bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if isVectorFile(path) && !isHidden(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// SpriteName returns the unique id of a sprite within a spritesheet: the
// path relative to the base directory, without the file extension. Icons in
// sub-directories get names like "shops/bakery".
func SpriteName(path, baseDir string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%q is not inside the input directory %q", path, baseDir)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.ToSlash(rel), nil
}
