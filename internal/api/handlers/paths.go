package handlers

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrOutsideLogRoot rejects analyze requests for files outside the configured log root.
var ErrOutsideLogRoot = errors.New("path is outside the log root")

// confine resolves p against root and rejects anything that lands outside it. Paths
// that exist are checked again after following symlinks; missing ones are left for
// the analyzer to report.
func confine(root, p string) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	p = filepath.Clean(p)
	if !within(root, p) {
		return "", ErrOutsideLogRoot
	}

	target, err := filepath.EvalSymlinks(p)
	if err != nil {
		return p, nil
	}
	if realRoot, err := filepath.EvalSymlinks(root); err == nil {
		root = realRoot
	}
	if !within(root, target) {
		return "", ErrOutsideLogRoot
	}
	return p, nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
