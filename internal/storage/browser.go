package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/logs"
	"github.com/rohits-web03/otadash/internal/models"
)

const DefaultRoot = "OTA/"

const downloadExpiry = 15 * time.Minute

// Browser is a folder-scoped view over a BlobStore rooted at a fixed prefix.
type Browser struct {
	store BlobStore
	root  string
	now   func() time.Time
	log   *logrus.Entry
}

func NewBrowser(store BlobStore, root string) *Browser {
	if root == "" {
		root = DefaultRoot
	}
	return &Browser{store: store, root: root, now: time.Now, log: logs.WithComponent("storage")}
}

func (b *Browser) Root() string { return b.root }

// Directory is one listed folder.
type Directory struct {
	Path        string               `json:"path"`
	Breadcrumbs []Crumb              `json:"breadcrumbs"`
	Items       []models.StorageFile `json:"items"`
	FetchedAt   time.Time            `json:"fetchedAt"`
}

// List returns the direct children of path: folders first, then files, each
// in backend order. Folders have size 0 and fetch-time timestamps. A non-empty
// filter keeps items whose name contains it, case-insensitively.
func (b *Browser) List(ctx context.Context, path, filter string) (Directory, error) {
	prefix, err := b.NormalizeFolder(path)
	if err != nil {
		return Directory{}, err
	}
	listing, err := b.store.List(ctx, prefix)
	if err != nil {
		return Directory{}, apperr.NewUnavailableError("Failed to list storage files", err)
	}

	now := b.now()
	items := make([]models.StorageFile, 0, len(listing.Prefixes)+len(listing.Objects))
	for _, p := range listing.Prefixes {
		items = append(items, models.StorageFile{
			ID:        p,
			Name:      baseName(p),
			Path:      p,
			Type:      models.StorageTypeFolder,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	for _, o := range listing.Objects {
		if o.Key == prefix || strings.HasSuffix(o.Key, "/") {
			continue
		}
		items = append(items, models.StorageFile{
			ID:        o.Key,
			Name:      baseName(o.Key),
			Path:      o.Key,
			Size:      o.Size,
			Type:      models.StorageTypeFile,
			CreatedAt: o.LastModified,
			UpdatedAt: o.LastModified,
		})
	}

	return Directory{
		Path:        prefix,
		Breadcrumbs: Breadcrumbs(prefix),
		Items:       FilterByName(items, filter),
		FetchedAt:   now,
	}, nil
}

// FilterByName keeps items whose name contains needle, case-insensitively.
func FilterByName(items []models.StorageFile, needle string) []models.StorageFile {
	needle = strings.ToLower(needle)
	if needle == "" {
		return items
	}
	out := make([]models.StorageFile, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			out = append(out, it)
		}
	}
	return out
}

// CreateFolder validates name and writes an empty marker object for the new folder.
func (b *Browser) CreateFolder(ctx context.Context, parent, name string) (models.StorageFile, error) {
	if err := ValidateFolderName(name); err != nil {
		return models.StorageFile{}, err
	}
	prefix, err := b.NormalizeFolder(parent)
	if err != nil {
		return models.StorageFile{}, err
	}
	key := prefix + name + "/"
	if err := b.store.Put(ctx, key, strings.NewReader(""), 0, "application/x-directory"); err != nil {
		return models.StorageFile{}, apperr.NewUnavailableError(fmt.Sprintf("Failed to create folder %s", name), err)
	}
	b.log.WithField("path", key).Info("folder created")
	now := b.now()
	return models.StorageFile{ID: key, Name: name, Path: key, Type: models.StorageTypeFolder, CreatedAt: now, UpdatedAt: now}, nil
}

// DeleteFile removes a single object. confirm must repeat the file name.
func (b *Browser) DeleteFile(ctx context.Context, path, confirm string) error {
	key, err := b.NormalizeFile(path)
	if err != nil {
		return err
	}
	name := baseName(key)
	if confirm != name {
		return confirmationError(name)
	}
	if err := b.store.Delete(ctx, key); err != nil {
		return apperr.NewUnavailableError("There was an error deleting the file.", err)
	}
	b.log.WithField("path", key).Info("file deleted")
	return nil
}

// DeleteFolder removes a folder and everything below it. confirm must repeat the folder name.
func (b *Browser) DeleteFolder(ctx context.Context, path, confirm string) (int, error) {
	prefix, err := b.NormalizeFolder(path)
	if err != nil {
		return 0, err
	}
	if prefix == b.root {
		return 0, apperr.NewValidationError("The root folder cannot be deleted", nil)
	}
	name := baseName(prefix)
	if confirm != name {
		return 0, confirmationError(name)
	}
	n, err := b.store.DeletePrefix(ctx, prefix)
	if err != nil {
		return n, apperr.NewUnavailableError("There was an error deleting the folder.", err)
	}
	b.log.WithFields(logrus.Fields{"path": prefix, "objects": n}).Info("folder deleted")
	return n, nil
}

// DownloadURL returns a short-lived link to a file.
func (b *Browser) DownloadURL(ctx context.Context, path string) (string, error) {
	key, err := b.NormalizeFile(path)
	if err != nil {
		return "", err
	}
	url, err := b.store.PresignGet(ctx, key, downloadExpiry)
	if err != nil {
		return "", apperr.NewUnavailableError("Failed to create download link", err)
	}
	return url, nil
}

func confirmationError(name string) error {
	return apperr.NewValidationError(fmt.Sprintf("Type %q to confirm deletion", name), nil).
		WithDetails(map[string]string{"confirm": name})
}

// Upload is one file selected for upload.
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}
