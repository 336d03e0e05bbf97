package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rohits-web03/stashbox/internal/api/middleware"
	"github.com/rohits-web03/stashbox/internal/api/services"
	"github.com/rohits-web03/stashbox/internal/utils"
)

// Multipart parts up to this size are kept in memory; larger ones spill to disk.
const multipartMemory = 4 << 20

// POST /upload
// UploadFile godoc
// @Summary Upload a file
// @Description Stores one file for the logged-in user if it fits in the remaining quota.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 200 {object} utils.Payload "data: {filename, fileId, size}"
// @Failure 400 {object} utils.Payload "Missing file or storage full"
// @Failure 401 {object} utils.Payload
// @Router /upload [post]
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.UserIDFromContext(r.Context())

	if r.ContentLength > h.maxUploadBytes {
		h.writeError(w, r, &services.Error{Kind: services.ErrQuotaExceeded, Message: "Storage full. You have reached the maximum storage limit."})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, &services.Error{Kind: services.ErrQuotaExceeded, Message: "Storage full. You have reached the maximum storage limit.", Err: err})
			return
		}
		badRequest(w, "Invalid file upload form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		badRequest(w, "No selected file")
		return
	}

	res, err := h.uploads.Upload(r.Context(), owner, services.Incoming{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.SuccessResponse(w, "File uploaded successfully", map[string]any{
		"filename": res.Filename,
		"fileId":   res.FileID,
		"size":     res.Size,
	})
}

// GET /dashboard
// Dashboard godoc
// @Summary List the caller's files and quota usage
// @Tags Files
// @Produce json
// @Success 200 {object} utils.Payload "data: {files, usage}"
// @Failure 401 {object} utils.Payload
// @Router /dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.UserIDFromContext(r.Context())

	files, err := h.files.List(r.Context(), owner)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	usage, err := h.files.Usage(r.Context(), owner)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.SuccessResponse(w, "Files retrieved successfully", map[string]any{
		"files": files,
		"usage": usage,
	})
}

// GET /api/usage
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.UserIDFromContext(r.Context())

	usage, err := h.files.Usage(r.Context(), owner)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.SuccessResponse(w, "Usage retrieved successfully", usage)
}

type renameInput struct {
	NewFilename string `json:"newFilename"`
}

func decodeRename(w http.ResponseWriter, r *http.Request) (renameInput, bool) {
	var in renameInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&in); err != nil {
		return in, false
	}
	return in, true
}

// PUT /update_file/{filename}
// UpdateFile godoc
// @Summary Rename one of the caller's files by its current name
// @Tags Files
// @Accept json
// @Produce json
// @Param filename path string true "Current filename"
// @Param body body renameInput true "New name"
// @Success 200 {object} utils.Payload "data: {newFilename}"
// @Failure 400 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /update_file/{filename} [put]
func (h *Handler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.UserIDFromContext(r.Context())

	in, ok := decodeRename(w, r)
	if !ok {
		badRequest(w, "Invalid input")
		return
	}

	f, err := h.files.Rename(r.Context(), owner, r.PathValue("filename"), in.NewFilename)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.renamed(w, f.ID, f.Filename)
}

// PUT /files/{id}
func (h *Handler) RenameFile(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.UserIDFromContext(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		badRequest(w, "Invalid file id")
		return
	}
	in, ok := decodeRename(w, r)
	if !ok {
		badRequest(w, "Invalid input")
		return
	}

	f, err := h.files.RenameByID(r.Context(), owner, id, in.NewFilename)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.renamed(w, f.ID, f.Filename)
}

func (h *Handler) renamed(w http.ResponseWriter, id uuid.UUID, name string) {
	utils.SuccessResponse(w, "File renamed successfully", map[string]any{
		"fileId":      id,
		"newFilename": name,
	})
}

// GET /files/{id}/download
// DownloadFile godoc
// @Summary Download one of the caller's files
// @Description Streams the file, or redirects to a short-lived URL when stored in R2.
// @Tags Files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Success 200 {file} binary
// @Success 307 "Redirect to presigned URL"
// @Failure 404 {object} utils.Payload
// @Router /files/{id}/download [get]
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.UserIDFromContext(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		badRequest(w, "Invalid file id")
		return
	}

	if url, ok, err := h.files.DownloadURL(r.Context(), owner, id); err != nil {
		h.writeError(w, r, err)
		return
	} else if ok {
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
		return
	}

	f, rc, err := h.files.Open(r.Context(), owner, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer rc.Close()

	// The stored type is client-declared, so never let the browser render it inline.
	w.Header().Set("Content-Type", f.FileType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Filename}))
	w.Header().Set("Content-Length", strconv.FormatInt(f.FileSize, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
