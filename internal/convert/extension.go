package convert

import (
	"fmt"
	"path/filepath"
	"strings"
)

var inputExtensions = map[Direction][]string{
	ToTextGrid: {".eaf", ".xml"},
	ToEAF:      {".textgrid", ".tg"},
}

// rejects input paths whose extension does not match the direction;
// meant for callers to run before any I/O
func CheckInputExtension(dir Direction, path string) error {
	allowed, ok := inputExtensions[dir]
	if !ok {
		return wrap(dir, fmt.Errorf("unknown conversion direction %q", dir))
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return wrap(dir, fmt.Errorf(
		"%w: %q, expected one of %s",
		ErrInvalidExtension,
		filepath.Base(path),
		strings.Join(allowed, ", "),
	))
}

// picks the direction from an input path's extension
func DirectionFor(path string) (Direction, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, dir := range []Direction{ToTextGrid, ToEAF} {
		for _, a := range inputExtensions[dir] {
			if ext == a {
				return dir, nil
			}
		}
	}
	return "", fmt.Errorf("%w: cannot infer conversion from %q", ErrInvalidExtension, filepath.Base(path))
}

// the default output path for a converted file: same base, target extension
func OutputPathFor(dir Direction, input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if dir == ToTextGrid {
		return base + ".TextGrid"
	}
	return base + ".eaf"
}
