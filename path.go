package drivecli

import (
	"fmt"
	"strings"

	derrors "github.com/Jumpaku/go-drivecli/errors"
)

// Path represents an absolute path in the remote namespace.
// Paths use forward slashes as separators (e.g., "/folder/subfolder/file").
// A missing leading '/' is tolerated; "." and ".." components are not allowed.
type Path string

// RootPath is the path of the remote root directory.
const RootPath Path = "/"

// Segments validates the path and returns its non-empty components.
// The root path has no segments.
func (p Path) Segments() (parts []string, err error) {
	return validateAndSplitPath(string(p))
}

// Join appends name as a child component of p.
func (p Path) Join(name string) Path {
	return Path(strings.TrimSuffix(string(p), "/") + "/" + name)
}

// Base returns the last component of p, or "" for the root.
func (p Path) Base() string {
	trimmed := strings.TrimRight(string(p), "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// Dir returns all but the last component of p as an absolute path.
func (p Path) Dir() Path {
	trimmed := strings.TrimRight(string(p), "/")
	i := strings.LastIndex(trimmed, "/")
	if i <= 0 {
		return RootPath
	}
	return Path(trimmed[:i])
}

// Clean returns the canonical form of p: leading '/', no empty or trailing components.
func (p Path) Clean() (Path, error) {
	parts, err := p.Segments()
	if err != nil {
		return "", err
	}
	return Path("/" + strings.Join(parts, "/")), nil
}

func validateAndSplitPath(path string) (parts []string, err error) {
	if path == "" {
		return nil, fmt.Errorf("empty path: %w", derrors.ErrInvalidPath)
	}

	for _, p := range strings.Split(path, "/") {
		if p == "." || p == ".." {
			return nil, fmt.Errorf("relative path components are not allowed in %q: %w", path, derrors.ErrInvalidPath)
		}
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}

	return parts, nil
}
