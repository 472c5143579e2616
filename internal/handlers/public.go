package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/theMessiMagic/if-fashion/internal/blob"
	"github.com/theMessiMagic/if-fashion/internal/upload"
)

const (
	adminSessionName  = "admin-session"
	chatSessionName   = "chat-session"
	publicSessionName = "public-session"
)

// pageData is the data every page template expects. It consumes the flashes
// of session, so the caller must save the session afterwards.
func pageData(r *http.Request, session *sessions.Session, title string) map[string]any {
	return map[string]any{
		"Title":     title,
		"CsrfField": csrf.TemplateField(r),
		"CsrfToken": csrf.Token(r),
		"Flashes":   GetFlash(session),
		"Year":      time.Now().Year(),
	}
}

type PublicHandler struct {
	Uploads      *upload.Uploader
	Templates    *TemplateCache
	SessionStore sessions.Store
}

func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.gallery(w, r, upload.GalleryHome, "home.html", "Home")
}

func (h *PublicHandler) Designs(w http.ResponseWriter, r *http.Request) {
	h.gallery(w, r, upload.GalleryDesigns, "designs.html", "Designs")
}

func (h *PublicHandler) gallery(w http.ResponseWriter, r *http.Request, gallery, tmpl, title string) {
	images, err := h.Uploads.ListGallery(r.Context(), gallery)
	if err != nil {
		slog.Error("Failed to list gallery", "gallery", gallery, "error", err)
		http.Error(w, "Error fetching images", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, publicSessionName)
	data := pageData(r, session, title)
	data["Images"] = images
	session.Save(r, w)
	h.Templates.Render(w, tmpl, data)
}

func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	h.static(w, r, "about.html", "About")
}

func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.static(w, r, "contact.html", "Contact")
}

func (h *PublicHandler) static(w http.ResponseWriter, r *http.Request, tmpl, title string) {
	session, _ := h.SessionStore.Get(r, publicSessionName)
	data := pageData(r, session, title)
	session.Save(r, w)
	h.Templates.Render(w, tmpl, data)
}

// Media streams a public gallery image.
func (h *PublicHandler) Media(w http.ResponseWriter, r *http.Request) {
	gallery := r.PathValue("gallery")
	if gallery != upload.GalleryHome && gallery != upload.GalleryDesigns {
		http.NotFound(w, r)
		return
	}
	serveBlob(w, r, h.Uploads, gallery, r.PathValue("filename"), "public, max-age=3600")
}

func (h *PublicHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "OK")
}

func serveBlob(w http.ResponseWriter, r *http.Request, uploads *upload.Uploader, area, filename, cacheControl string) {
	info, body, err := uploads.Open(r.Context(), area, filename)
	if errors.Is(err, blob.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("Failed to open file", "area", area, "file", filename, "error", err)
		http.Error(w, "Error reading file", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", info.ContentType)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.Header().Set("Cache-Control", cacheControl)
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("Failed to stream file", "area", area, "file", filename, "error", err)
	}
}
