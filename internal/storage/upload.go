package storage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rohits-web03/otadash/internal/apperr"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a dismissible toast shown after an operation.
type Notification struct {
	Variant     Variant `json:"variant"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

type UploadResult struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// UploadReport summarizes a multi-file upload.
type UploadReport struct {
	Path          string         `json:"path"`
	Total         int            `json:"total"`
	Succeeded     int            `json:"succeeded"`
	Failed        int            `json:"failed"`
	Results       []UploadResult `json:"results"`
	Notifications []Notification `json:"notifications"`
	Directory     *Directory     `json:"directory,omitempty"`
}

// UploadFiles uploads files into folder one at a time. A failing file does not
// stop the rest. The folder is listed again afterwards whatever the outcome.
func (b *Browser) UploadFiles(ctx context.Context, folder string, files []Upload) (UploadReport, error) {
	if len(files) == 0 {
		return UploadReport{}, apperr.NewValidationError("Please select at least one file to upload.", nil)
	}
	prefix, err := b.NormalizeFolder(folder)
	if err != nil {
		return UploadReport{}, err
	}

	report := UploadReport{Path: prefix, Total: len(files)}
	for _, f := range files {
		res := UploadResult{Name: f.Name}
		if err := b.putOne(ctx, prefix, f); err != nil {
			b.log.WithFields(logrus.Fields{"file": f.Name, "path": prefix}).WithError(err).Warn("upload failed")
			res.Error = err.Error()
			report.Failed++
		} else {
			res.Path = prefix + f.Name
			report.Succeeded++
		}
		report.Results = append(report.Results, res)
	}

	if report.Succeeded > 0 {
		report.Notifications = append(report.Notifications, Notification{
			Variant:     VariantDefault,
			Title:       "Upload Complete",
			Description: fmt.Sprintf("%d of %d file(s) uploaded successfully to %s.", report.Succeeded, report.Total, prefix),
		})
	}
	if report.Failed > 0 {
		report.Notifications = append(report.Notifications, Notification{
			Variant:     VariantDestructive,
			Title:       "Upload Failed",
			Description: fmt.Sprintf("%d file(s) could not be uploaded.", report.Failed),
		})
	}

	dir, err := b.List(ctx, prefix, "")
	if err != nil {
		b.log.WithError(err).Warn("refresh after upload failed")
	} else {
		report.Directory = &dir
	}
	return report, nil
}

func (b *Browser) putOne(ctx context.Context, prefix string, f Upload) error {
	if err := validateFileName(f.Name); err != nil {
		return err
	}
	if f.Open == nil {
		return fmt.Errorf("no content for %s", f.Name)
	}
	body, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer body.Close()

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := b.store.Put(ctx, prefix+f.Name, body, f.Size, contentType); err != nil {
		return fmt.Errorf("put %s: %w", f.Name, err)
	}
	return nil
}
