package storage

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	tcerrors "github.com/mrz1836/turbocache/internal/errors"
)

// ArtifactPath joins teamID and artifactID into a backend-relative path.
//
// Each identifier must be a single non-empty path element without a leading
// dot, and the result must stay inside the backend root.
func ArtifactPath(teamID, artifactID string) (string, error) {
	for _, part := range []struct{ name, value string }{
		{"team", teamID},
		{"artifact", artifactID},
	} {
		if err := validateElement(part.name, part.value); err != nil {
			return "", err
		}
	}

	p := path.Join(teamID, artifactID)
	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return "", fmt.Errorf("%w: %q", tcerrors.ErrPathTraversal, p)
	}
	return p, nil
}

func validateElement(name, value string) error {
	switch {
	case value == "":
		return fmt.Errorf("%w: empty %s identifier", tcerrors.ErrInvalidArtifactPath, name)
	case value == "." || value == "..":
		return fmt.Errorf("%w: %s identifier %q", tcerrors.ErrPathTraversal, name, value)
	case strings.ContainsAny(value, `/\`):
		return fmt.Errorf("%w: %s identifier %q contains a path separator", tcerrors.ErrInvalidArtifactPath, name, value)
	case strings.ContainsRune(value, 0):
		return fmt.Errorf("%w: %s identifier contains a NUL byte", tcerrors.ErrInvalidArtifactPath, name)
	case strings.HasPrefix(value, "."):
		return fmt.Errorf("%w: %s identifier %q starts with a dot", tcerrors.ErrInvalidArtifactPath, name, value)
	}
	return nil
}
