package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires up the application routes. The SSE handler is
// optional; pass nil to disable the events endpoint.
func NewRouter(h *Handler, events http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/api/captcha", h.Captcha)
	r.Post("/api/login", h.Login)

	r.Get("/api/files", h.ListFiles)
	r.Get("/api/file/{filename}", h.GetFileJSON)
	r.Get("/file/{filename}", h.GetFileRaw)
	r.Get("/log/{filename}", h.GetLog)
	r.Get("/image/{filename}", h.GetImage)

	r.Post("/api/save", h.Save)
	r.Post("/api/delete", h.Delete)
	r.Post("/api/create", h.Create)
	r.Post("/api/rename", h.Rename)
	r.Post("/api/upload", h.Upload)
	r.Post("/api/upload-image", h.UploadImage)

	r.Post("/api/share", h.CreateShare)
	r.Get("/api/share/{shareId}", h.ResolveShare)

	r.Get("/api/search", h.Search)

	if events != nil {
		r.Get("/api/events", events.ServeHTTP)
	}

	return r
}
