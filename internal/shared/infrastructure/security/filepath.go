// Package security validates user-supplied file paths before they reach
// the filesystem.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath     = errors.New("file path is empty")
	ErrForbiddenChar = errors.New("file path contains a forbidden character")
	ErrOutsideDir    = errors.New("file path escapes base directory")
)

const forbiddenChars = ";&|$`(){}<>!\n\r"

// ResolvePath cleans path, makes it absolute and follows symlinks when the
// target exists. Shell metacharacters are rejected.
func ResolvePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if i := strings.IndexAny(path, forbiddenChars); i >= 0 {
		return "", fmt.Errorf("%w %q: %s", ErrForbiddenChar, path[i], path)
	}
	return absolute(path)
}

func absolute(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return resolved, nil
}

// ResolvePathInDir is ResolvePath plus a check that the result lies inside
// baseDir.
func ResolvePathInDir(path, baseDir string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("base directory: %w", ErrEmptyPath)
	}
	resolved, err := ResolvePath(path)
	if err != nil {
		return "", err
	}
	base, err := absolute(baseDir)
	if err != nil {
		return "", err
	}
	if resolved != base && !strings.HasPrefix(resolved, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not within %s", ErrOutsideDir, path, baseDir)
	}
	return resolved, nil
}

// ReadFile reads a file after ResolvePath.
func ReadFile(path string) ([]byte, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.ReadFile(resolved)
}

// ReadFileInDir reads a file after ResolvePathInDir.
func ReadFileInDir(path, baseDir string) ([]byte, error) {
	resolved, err := ResolvePathInDir(path, baseDir)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.ReadFile(resolved)
}
