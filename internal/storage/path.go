package storage

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rohits-web03/otadash/internal/apperr"
)

var folderNamePattern = regexp.MustCompile(`^ver\d+\.\d+\.\d+$`)

// ValidateFolderName accepts names of the form ver<major>.<minor>.<patch>.
func ValidateFolderName(name string) error {
	if !folderNamePattern.MatchString(name) {
		return apperr.NewValidationError(
			fmt.Sprintf("Invalid folder name %q. Use the format verX.Y.Z, for example ver1.0.0.", name), nil)
	}
	return nil
}

// Crumb is one segment of the current path.
type Crumb struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Current bool   `json:"current"`
}

// Breadcrumbs splits a folder path into navigable segments. Every segment but
// the last links to the path up to and including it.
func Breadcrumbs(path string) []Crumb {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	crumbs := make([]Crumb, 0, len(segments))
	prefix := ""
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		prefix += seg + "/"
		crumbs = append(crumbs, Crumb{Name: seg, Path: prefix, Current: i == len(segments)-1})
	}
	return crumbs
}

func (b *Browser) inRoot(p string) (string, error) {
	p = strings.TrimLeft(strings.TrimSpace(p), "/")
	if p == "" || p+"/" == b.root {
		return b.root, nil
	}
	if !strings.HasPrefix(p, b.root) {
		p = b.root + p
	}
	for _, seg := range strings.Split(strings.TrimSuffix(p, "/"), "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", apperr.NewValidationError(fmt.Sprintf("Invalid path %q", p), nil)
		}
	}
	return p, nil
}

// NormalizeFolder resolves p to a folder prefix under the root, ending in "/".
// Relative paths are taken from the root.
func (b *Browser) NormalizeFolder(p string) (string, error) {
	p, err := b.inRoot(p)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p, nil
}

// NormalizeFile resolves p to an object key under the root.
func (b *Browser) NormalizeFile(p string) (string, error) {
	p, err := b.inRoot(p)
	if err != nil {
		return "", err
	}
	if p == b.root || strings.HasSuffix(p, "/") {
		return "", apperr.NewValidationError(fmt.Sprintf("%q is a folder, not a file", p), nil)
	}
	return p, nil
}

func baseName(p string) string {
	p = strings.TrimSuffix(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func validateFileName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return apperr.NewValidationError(fmt.Sprintf("Invalid file name %q", name), nil)
	}
	return nil
}
