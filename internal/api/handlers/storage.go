package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/storage"
	"github.com/rohits-web03/otadash/internal/utils"
)

const maxUploadMemory = 32 << 20

type deleteInput struct {
	Path    string `json:"path"`
	Confirm string `json:"confirm"`
}

type folderInput struct {
	Parent string `json:"parent"`
	Name   string `json:"name"`
}

type downloadResponse struct {
	URL       string `json:"url"`
	ExpiresIn string `json:"expiresIn"`
}

// ListStorage godoc
// @Summary List a firmware folder
// @Description Direct children only, folders first. Paths live under the storage root.
// @Tags Storage
// @Produce json
// @Param path query string false "Folder path" default(OTA/)
// @Param filter query string false "Name filter"
// @Success 200 {object} utils.Payload{data=storage.Directory}
// @Failure 400 {object} utils.Payload
// @Router /api/v1/storage [get]
func (h *Handler) ListStorage(w http.ResponseWriter, r *http.Request) {
	dir, err := h.Storage.List(r.Context(), r.URL.Query().Get("path"), r.URL.Query().Get("filter"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Files fetched", dir)
}

// DownloadFile godoc
// @Summary Presigned download link for a firmware file
// @Tags Storage
// @Produce json
// @Param path query string true "File path"
// @Success 200 {object} utils.Payload{data=downloadResponse}
// @Router /api/v1/storage/download [get]
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	url, err := h.Storage.DownloadURL(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Download link created", downloadResponse{URL: url, ExpiresIn: "15m"})
}

// UploadFiles godoc
// @Summary Upload firmware files into a folder
// @Description Files are uploaded one after another; failures do not stop the rest.
// @Tags Storage
// @Accept multipart/form-data
// @Produce json
// @Param path formData string true "Target folder"
// @Param files formData file true "Files to upload" style(form) explode(true)
// @Success 200 {object} utils.Payload{data=storage.UploadReport}
// @Failure 400 {object} utils.Payload
// @Router /api/v1/storage/files [post]
func (h *Handler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		utils.WriteError(w, r, apperr.NewValidationError("Invalid file upload form", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	formFiles := r.MultipartForm.File["files"]
	uploads := make([]storage.Upload, 0, len(formFiles))
	for _, fh := range formFiles {
		uploads = append(uploads, storage.Upload{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Open:        opener(fh),
		})
	}

	report, err := h.Storage.UploadFiles(r.Context(), r.FormValue("path"), uploads)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: report.Failed == 0,
		Message: uploadMessage(report),
		Data:    report,
	})
}

func opener(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) { return fh.Open() }
}

func uploadMessage(report storage.UploadReport) string {
	if len(report.Notifications) == 0 {
		return "Upload finished"
	}
	return report.Notifications[0].Description
}

// DeleteFile godoc
// @Summary Delete a firmware file
// @Description confirm must repeat the file name.
// @Tags Storage
// @Accept json
// @Produce json
// @Param body body deleteInput true "Target"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/storage/files [delete]
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	var input deleteInput
	if err := decodeJSON(r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Storage.DeleteFile(r.Context(), input.Path, input.Confirm); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "File deleted successfully", map[string]string{"path": input.Path})
}

// CreateFolder godoc
// @Summary Create a version folder
// @Description Folder names must look like ver1.2.3.
// @Tags Storage
// @Accept json
// @Produce json
// @Param body body folderInput true "Folder"
// @Success 201 {object} utils.Payload{data=models.StorageFile}
// @Failure 400 {object} utils.Payload
// @Router /api/v1/storage/folders [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var input folderInput
	if err := decodeJSON(r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	folder, err := h.Storage.CreateFolder(r.Context(), input.Parent, input.Name)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Folder created successfully",
		Data:    folder,
	})
}

// DeleteFolder godoc
// @Summary Delete a folder and everything in it
// @Description confirm must repeat the folder name.
// @Tags Storage
// @Accept json
// @Produce json
// @Param body body deleteInput true "Target"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/storage/folders [delete]
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	var input deleteInput
	if err := decodeJSON(r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	n, err := h.Storage.DeleteFolder(r.Context(), input.Path, input.Confirm)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Success(w, "Folder deleted successfully", map[string]any{"path": input.Path, "deleted": n})
}
