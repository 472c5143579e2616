package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/theMessiMagic/if-fashion/internal/metrics"
	"github.com/theMessiMagic/if-fashion/internal/security"
	"github.com/theMessiMagic/if-fashion/internal/store"
	"github.com/theMessiMagic/if-fashion/internal/upload"
)

const adminKey = "admin"

type AdminHandler struct {
	Store          *store.Store
	Uploads        *upload.Uploader
	SessionStore   sessions.Store
	Templates      *TemplateCache
	Metrics        *metrics.Metrics
	MaxUploadBytes int64
}

// currentAdmin returns the logged-in admin's username, or "".
func currentAdmin(session *sessions.Session) string {
	name, _ := session.Values[adminKey].(string)
	return name
}

func (h *AdminHandler) SignupGet(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	exists, err := h.Store.AdminExists(r.Context())
	if err != nil {
		slog.Error("Failed to check admin", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if exists {
		redirectWithFlash(w, r, session, "error", "Admin already exists. Signup disabled.", "/admin")
		return
	}
	data := pageData(r, session, "Create Admin")
	session.Save(r, w)
	h.Templates.Render(w, "admin_signup.html", data)
}

// SignupPost creates the single admin. Once one exists every attempt is
// refused without touching the stored admin.
func (h *AdminHandler) SignupPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	exists, err := h.Store.AdminExists(r.Context())
	if err != nil {
		slog.Error("Failed to check admin", "error", err)
		redirectWithFlash(w, r, session, "error", "Internal Server Error", "/admin")
		return
	}
	if exists {
		slog.Warn("Rejected admin signup, admin already exists", "ip", r.RemoteAddr)
		redirectWithFlash(w, r, session, "error", "Admin already exists. Signup disabled.", "/admin")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" {
		redirectWithFlash(w, r, session, "error", "Username is required.", "/admin/signup")
		return
	}
	hash, err := security.HashPassword(password)
	if errors.Is(err, security.ErrEmptyPassword) {
		redirectWithFlash(w, r, session, "error", "Password is required.", "/admin/signup")
		return
	}
	if err != nil {
		redirectWithFlash(w, r, session, "error", "Please choose a password of at most 72 characters.", "/admin/signup")
		return
	}

	err = h.Store.CreateAdmin(r.Context(), username, hash)
	if errors.Is(err, store.ErrAdminExists) {
		redirectWithFlash(w, r, session, "error", "Admin already exists. Signup disabled.", "/admin")
		return
	}
	if err != nil {
		slog.Error("Failed to create admin", "error", err)
		redirectWithFlash(w, r, session, "error", "Could not create admin.", "/admin/signup")
		return
	}

	slog.Info("Admin created", "username", username)
	redirectWithFlash(w, r, session, "success", "Admin created successfully. Please login.", "/admin")
}

func (h *AdminHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	if currentAdmin(session) != "" {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	data := pageData(r, session, "Admin Login")
	session.Save(r, w)
	h.Templates.Render(w, "admin_login.html", data)
}

func (h *AdminHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	username := r.FormValue("username")
	password := r.FormValue("password")

	admin, err := h.Store.GetAdmin(r.Context(), username)
	if err != nil {
		slog.Error("Failed to load admin", "error", err)
		redirectWithFlash(w, r, session, "error", "Internal Server Error", "/admin")
		return
	}
	if admin == nil || !security.VerifyPassword(password, admin.Password) {
		slog.Warn("Failed admin login", "username", username, "ip", r.RemoteAddr)
		redirectWithFlash(w, r, session, "error", "Invalid username or password", "/admin")
		return
	}

	session.Values[adminKey] = admin.Username
	session.Options.Path = "/"
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	slog.Info("Login successful, redirecting to dashboard", "username", admin.Username)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Logout clears every session the site keeps and returns to the home page.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{adminSessionName, chatSessionName, publicSessionName} {
		session, _ := h.SessionStore.Get(r, name)
		session.Values = make(map[any]any)
		session.Options.MaxAge = -1 // Expire immediately
		if err := session.Save(r, w); err != nil {
			slog.Error("Failed to clear session", "session", name, "error", err)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AuthMiddleware ensures the admin is logged in
func (h *AdminHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := h.SessionStore.Get(r, adminSessionName)
		if currentAdmin(session) == "" {
			slog.Info("AuthMiddleware: not authenticated, redirecting to login", "path", r.URL.Path)
			redirectWithFlash(w, r, session, "error", "You must be logged in to access this page.", "/admin")
			return
		}
		next(w, r)
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.Store.GetDashboardStats(ctx)
	if err != nil {
		slog.Error("Failed to fetch stats", "error", err)
		http.Error(w, "Error fetching stats", http.StatusInternalServerError)
		return
	}
	customers, err := h.Store.ListCustomerSubmissions(ctx)
	if err != nil {
		http.Error(w, "Error fetching customer requests", http.StatusInternalServerError)
		return
	}
	employees, err := h.Store.ListEmployeeApplications(ctx)
	if err != nil {
		http.Error(w, "Error fetching employee applications", http.StatusInternalServerError)
		return
	}
	pending, err := h.Store.ListPendingTickets(ctx)
	if err != nil {
		http.Error(w, "Error fetching chat tickets", http.StatusInternalServerError)
		return
	}
	answered, err := h.Store.ListAnsweredTickets(ctx)
	if err != nil {
		http.Error(w, "Error fetching chat tickets", http.StatusInternalServerError)
		return
	}
	homeImages, err := h.Uploads.ListGallery(ctx, upload.GalleryHome)
	if err != nil {
		http.Error(w, "Error fetching images", http.StatusInternalServerError)
		return
	}
	designs, err := h.Uploads.ListGallery(ctx, upload.GalleryDesigns)
	if err != nil {
		http.Error(w, "Error fetching images", http.StatusInternalServerError)
		return
	}

	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := pageData(r, session, "Dashboard")
	data["Admin"] = currentAdmin(session)
	data["Stats"] = stats
	data["Customers"] = customers
	data["Employees"] = employees
	data["PendingTickets"] = pending
	data["AnsweredTickets"] = answered
	data["HomeImages"] = homeImages
	data["Designs"] = designs
	session.Save(r, w) // Save session to clear flashes
	h.Templates.Render(w, "admin_dashboard.html", data)
}

// UploadGallery stores the home_image and design_image files of a dashboard
// upload form. Either may be absent.
func (h *AdminHandler) UploadGallery(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		redirectWithFlash(w, r, session, "error", "File too large or invalid form.", "/admin/dashboard")
		return
	}

	fields := []struct{ field, gallery string }{
		{"home_image", upload.GalleryHome},
		{"design_image", upload.GalleryDesigns},
	}
	for _, f := range fields {
		file, header, err := r.FormFile(f.field)
		if err != nil {
			continue
		}
		file.Close()

		name, err := h.Uploads.SaveGalleryImage(r.Context(), f.gallery, header)
		switch {
		case err == nil:
			session.AddFlash(FlashMessage{Type: "success", Message: "Uploaded " + name + "."})
		case errors.Is(err, upload.ErrDisallowedType), errors.Is(err, upload.ErrEmptyName):
			session.AddFlash(FlashMessage{Type: "error", Message: "Only PNG, JPG, JPEG and WEBP images are allowed."})
		default:
			slog.Error("Failed to store gallery image", "gallery", f.gallery, "error", err)
			session.AddFlash(FlashMessage{Type: "error", Message: "Error saving image."})
		}
	}
	redirectWithFlash(w, r, session, "", "", "/admin/dashboard")
}
