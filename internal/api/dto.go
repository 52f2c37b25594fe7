package api

import (
	"github.com/soverin/inkpot/internal/index"
	"github.com/soverin/inkpot/internal/notes"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	CaptchaID   string `json:"captchaId"`
	CaptchaCode string `json:"captchaCode"`
}

// LoginResponse is the body returned by POST /api/login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SaveRequest is the body of POST /api/save.
type SaveRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// DeleteRequest is the body of POST /api/delete.
type DeleteRequest struct {
	Path string `json:"path"`
}

// CreateRequest is the body of POST /api/create.
type CreateRequest struct {
	Title string `json:"title"`
}

// RenameRequest is the body of POST /api/rename.
type RenameRequest struct {
	Path     string `json:"path"`
	NewTitle string `json:"newTitle"`
}

// ShareRequest is the body of POST /api/share.
type ShareRequest struct {
	Path       string `json:"path"`
	ExpireDays int    `json:"expireDays"`
}

// FileListResponse is the paginated listing returned by GET /api/files.
type FileListResponse struct {
	Data     []notes.ListItem `json:"data"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	HasMore  bool             `json:"hasMore"`
}

// NoteResponse wraps note metadata returned by mutating endpoints.
type NoteResponse struct {
	Success bool        `json:"success"`
	Note    *notes.Note `json:"note"`
}

// ShareCreateResponse is returned by POST /api/share.
type ShareCreateResponse struct {
	Success  bool   `json:"success"`
	ShareID  string `json:"shareId"`
	ShareURL string `json:"shareUrl"`
}

// ShareContentResponse is returned by GET /api/share/{shareId}.
type ShareContentResponse struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}
