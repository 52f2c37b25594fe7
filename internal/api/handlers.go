// Package api implements the HTTP surface using chi. Handlers are thin
// adapters translating requests to the host-agnostic service layer.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soverin/inkpot/internal/apperr"
	"github.com/soverin/inkpot/internal/auth"
	"github.com/soverin/inkpot/internal/captcha"
	"github.com/soverin/inkpot/internal/formdata"
	"github.com/soverin/inkpot/internal/images"
	"github.com/soverin/inkpot/internal/index"
	"github.com/soverin/inkpot/internal/notes"
	"github.com/soverin/inkpot/internal/share"
	"github.com/soverin/inkpot/internal/storage"
)

// Handler holds the route handlers and their collaborators. The image
// byte cap applies only to /api/upload-image; the note upload path
// deliberately has no limit.
type Handler struct {
	svc           *notes.Service
	captchas      *captcha.Store
	shares        *share.Registry
	creds         *auth.Verifier
	imgs          *images.Store
	imageDir      storage.Provider
	logDir        storage.Provider
	db            *index.DB
	maxImageBytes int64
}

// NewHandler creates a new Handler.
func NewHandler(svc *notes.Service, captchas *captcha.Store, shares *share.Registry, creds *auth.Verifier, imgs *images.Store, imageDir, logDir storage.Provider, db *index.DB, maxImageBytes int64) *Handler {
	return &Handler{
		svc:           svc,
		captchas:      captchas,
		shares:        shares,
		creds:         creds,
		imgs:          imgs,
		imageDir:      imageDir,
		logDir:        logDir,
		db:            db,
		maxImageBytes: maxImageBytes,
	}
}

// Captcha handles GET /api/captcha: issues a challenge and returns the
// SVG body with the challenge id in the X-Captcha-Id header.
func (h *Handler) Captcha(w http.ResponseWriter, _ *http.Request) {
	id, svg := h.captchas.Issue()
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Captcha-Id", id)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// Login handles POST /api/login: verifies the captcha, then the
// configured credential pair.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, LoginResponse{Message: "invalid JSON body"})
		return
	}
	if req.Username == "" || req.Password == "" || req.CaptchaID == "" || req.CaptchaCode == "" {
		writeJSON(w, http.StatusBadRequest, LoginResponse{Message: "missing required parameters"})
		return
	}

	ok, err := h.captchas.Verify(req.CaptchaID, req.CaptchaCode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, LoginResponse{Message: "captcha expired"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusBadRequest, LoginResponse{Message: "captcha incorrect"})
		return
	}

	switch err := h.creds.Verify(req.Username, req.Password); {
	case err == nil:
		writeJSON(w, http.StatusOK, LoginResponse{Success: true, Message: "login ok"})
	case errors.Is(err, apperr.ErrBadCredentials):
		writeJSON(w, http.StatusUnauthorized, LoginResponse{Message: "invalid username or password"})
	default:
		slog.Error("login config unusable", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, LoginResponse{Message: "login configuration error"})
	}
}

// ListFiles handles GET /api/files with page/pageSize query parameters.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	res, err := h.svc.List(page, pageSize)
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, FileListResponse{
		Data:     res.Items,
		Total:    res.Total,
		Page:     res.Page,
		PageSize: res.PageSize,
		HasMore:  res.HasMore,
	})
}

// GetFileJSON handles GET /api/file/{filename}: note content as JSON.
func (h *Handler) GetFileJSON(w http.ResponseWriter, r *http.Request) {
	content, ok := h.readNote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": string(content)})
}

// GetFileRaw handles GET /file/{filename}: note content as plain text.
func (h *Handler) GetFileRaw(w http.ResponseWriter, r *http.Request) {
	content, ok := h.readNote(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (h *Handler) readNote(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	filename := chi.URLParam(r, "filename")
	content, err := h.svc.Read(filename)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("read note failed", slog.String("filename", filename), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return nil, false
	}
	return content, true
}

// GetLog handles GET /log/{filename}: raw reads from the log directory.
func (h *Handler) GetLog(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	content, err := h.logDir.Read(filename)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// GetImage handles GET /image/{filename}: binary attachment fetch with
// content type derived from the extension.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	content, err := h.imageDir.Read(filename)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.Header().Set("Content-Type", images.ContentType(filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// Save handles POST /api/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and content are required"))
		return
	}
	if err := h.svc.Save(notes.TrimPath(req.Path), []byte(req.Content)); err != nil {
		slog.Error("save note failed", slog.String("path", req.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("save failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Delete handles POST /api/delete: removes the note and any image
// attachments its content references.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.Delete(notes.TrimPath(req.Path)); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete note failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("delete failed"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Create handles POST /api/create.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	note, err := h.svc.Create(req.Title)
	if err != nil {
		slog.Error("create note failed", slog.String("title", req.Title), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("create failed"))
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{Success: true, Note: note})
}

// Rename handles POST /api/rename.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.NewTitle == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and newTitle are required"))
		return
	}
	note, err := h.svc.Rename(notes.TrimPath(req.Path), req.NewTitle)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("rename note failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("rename failed"))
		}
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{Success: true, Note: note})
}

// Upload handles POST /api/upload: a multipart note upload decoded by
// the wire-compatible formdata decoder. Collisions are rejected, not
// disambiguated.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	filename, content, err := formdata.Decode(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid upload"))
		return
	}
	if !strings.HasSuffix(filename, notes.Ext) {
		writeJSON(w, http.StatusBadRequest, errorBody("only .md files are supported"))
		return
	}

	note, err := h.svc.CreateFromUpload(filename, content)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusBadRequest, errorBody("file already exists"))
		} else {
			slog.Error("upload note failed", slog.String("filename", filename), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("upload failed"))
		}
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{Success: true, Note: note})
}

// UploadImage handles POST /api/upload-image: a library-backed
// multipart image upload, capped at 10 MiB.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes)

	if err := r.ParseMultipartForm(h.maxImageBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	name, err := h.imgs.Save(header.Filename, content)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported image format"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"imageUrl": "/image/" + name,
	})
}

// CreateShare handles POST /api/share. The share URL is built from the
// request's Host header; the registry itself only deals in ids.
func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	id, err := h.shares.Create(notes.TrimPath(req.Path), req.ExpireDays)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("create share failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("share failed"))
		}
		return
	}
	writeJSON(w, http.StatusOK, ShareCreateResponse{
		Success:  true,
		ShareID:  id,
		ShareURL: "http://" + r.Host + "/share/" + id,
	})
}

// ResolveShare handles GET /api/share/{shareId}. Unknown, expired, and
// target-deleted all answer 404.
func (h *Handler) ResolveShare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "shareId")
	filename, err := h.shares.Resolve(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("share link not found or expired"))
		return
	}

	// Live read: the share always reflects the note's current content.
	content, err := h.svc.Read(filename)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, ShareContentResponse{
		Content:  string(content),
		Filename: filename,
	})
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.db.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
