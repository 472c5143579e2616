package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/theMessiMagic/if-fashion/internal/metrics"
	"github.com/theMessiMagic/if-fashion/internal/models"
	"github.com/theMessiMagic/if-fashion/internal/store"
	"github.com/theMessiMagic/if-fashion/internal/upload"
)

const trackNotFoundMessage = "Invalid Track ID. Please check and try again."

// Read-once session keys holding the last issued tracking IDs.
const (
	lastCustomerTrackKey = "last_track_id"
	lastEmployeeTrackKey = "employee_track_id"
)

type SubmissionHandler struct {
	Store          *store.Store
	Uploads        *upload.Uploader
	Templates      *TemplateCache
	SessionStore   sessions.Store
	Metrics        *metrics.Metrics
	MaxUploadBytes int64
}

// redirectWithFlash saves session with one flash added and redirects.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, session *sessions.Session, kind, message, url string) {
	if message != "" {
		session.AddFlash(FlashMessage{Type: kind, Message: message})
	}
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// popString removes and returns a string session value.
func popString(session *sessions.Session, key string) string {
	v, _ := session.Values[key].(string)
	delete(session.Values, key)
	return v
}

func (h *SubmissionHandler) maxUploadBytes() int64 {
	if h.MaxUploadBytes > 0 {
		return h.MaxUploadBytes
	}
	return 10 << 20
}

func (h *SubmissionHandler) CustomerForm(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, publicSessionName)
	data := pageData(r, session, "Send a Design")
	data["LastTrackID"] = popString(session, lastCustomerTrackKey)
	session.Save(r, w)
	h.Templates.Render(w, "customer.html", data)
}

// SubmitCustomer stores an uploaded design and creates a submission for it.
// Without a permitted image nothing is recorded.
func (h *SubmissionHandler) SubmitCustomer(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, publicSessionName)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
	if err := r.ParseMultipartForm(h.maxUploadBytes()); err != nil {
		redirectWithFlash(w, r, session, "error", "Upload too large or invalid form.", "/customer")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	phone := strings.TrimSpace(r.FormValue("phone"))
	message := r.FormValue("message")

	file, header, err := r.FormFile("image")
	if err != nil {
		redirectWithFlash(w, r, session, "error", "Please attach an image of your design.", "/customer")
		return
	}
	file.Close()

	stored, err := h.Uploads.Save(r.Context(), upload.AreaCustomer, name, header, upload.ImageExtensions)
	if errors.Is(err, upload.ErrDisallowedType) || errors.Is(err, upload.ErrEmptyName) {
		slog.Info("Ignoring customer upload", "file", header.Filename, "reason", err)
		redirectWithFlash(w, r, session, "error", "Please attach a PNG, JPG or WEBP image.", "/customer")
		return
	}
	if err != nil {
		slog.Error("Failed to store customer upload", "error", err)
		redirectWithFlash(w, r, session, "error", "Could not save your design. Please try again.", "/customer")
		return
	}

	sub, err := h.Store.CreateCustomerSubmission(r.Context(), models.CustomerSubmission{
		Name:    name,
		Phone:   phone,
		Image:   stored,
		Message: message,
	})
	if err != nil {
		slog.Error("Failed to save customer submission", "error", err)
		redirectWithFlash(w, r, session, "error", "Could not save your design. Please try again.", "/customer")
		return
	}
	h.Metrics.Submission("customer")
	slog.Info("Customer submission received", "track_id", sub.TrackID)

	session.Values[lastCustomerTrackKey] = sub.TrackID
	redirectWithFlash(w, r, session, "success", "Thank you! We have received your design.", "/customer")
}

func (h *SubmissionHandler) CareersForm(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, publicSessionName)
	data := pageData(r, session, "Careers")
	data["EmployeeTrackID"] = popString(session, lastEmployeeTrackKey)
	session.Save(r, w)
	h.Templates.Render(w, "careers.html", data)
}

// SubmitCareers records a job application. The ID document is optional and
// dropped when its type is not permitted.
func (h *SubmissionHandler) SubmitCareers(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, publicSessionName)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
	if err := r.ParseMultipartForm(h.maxUploadBytes()); err != nil {
		redirectWithFlash(w, r, session, "error", "Upload too large or invalid form.", "/careers")
		return
	}

	app := models.EmployeeApplication{
		Name:       strings.TrimSpace(r.FormValue("name")),
		Phone:      strings.TrimSpace(r.FormValue("phone")),
		NationalID: strings.TrimSpace(r.FormValue("aadhar")),
		WorkType:   r.FormValue("work_type"),
		Experience: r.FormValue("experience"),
		Message:    r.FormValue("message"),
	}

	if file, header, err := r.FormFile("aadhar_file"); err == nil {
		file.Close()
		stored, err := h.Uploads.Save(r.Context(), upload.AreaEmployee, app.Phone, header, upload.DocumentExtensions)
		switch {
		case err == nil:
			app.DocFile = stored
		case errors.Is(err, upload.ErrDisallowedType), errors.Is(err, upload.ErrEmptyName):
			slog.Info("Ignoring employee document", "file", header.Filename, "reason", err)
		default:
			slog.Error("Failed to store employee document", "error", err)
		}
	}

	app, err := h.Store.CreateEmployeeApplication(r.Context(), app)
	if err != nil {
		slog.Error("Failed to save employee application", "error", err)
		redirectWithFlash(w, r, session, "error", "Could not save your application. Please try again.", "/careers")
		return
	}
	h.Metrics.Submission("employee")
	slog.Info("Employee application received", "track_id", app.TrackID)

	session.Values[lastEmployeeTrackKey] = app.TrackID
	redirectWithFlash(w, r, session, "success", "Thank you! We will contact you soon.", "/careers")
}

// Track shows the form and, for POST, the status of one tracking ID.
func (h *SubmissionHandler) Track(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, publicSessionName)
	data := pageData(r, session, "Track")
	data["TrackID"] = ""
	session.Save(r, w)

	if r.Method == http.MethodPost {
		trackID := strings.TrimSpace(r.FormValue("track_id"))
		data["TrackID"] = trackID

		result, err := h.Store.Track(r.Context(), trackID)
		switch {
		case err == nil:
			data["Result"] = result
		case errors.Is(err, store.ErrNotFound):
			data["Error"] = trackNotFoundMessage
		default:
			slog.Error("Failed to look up track ID", "track_id", trackID, "error", err)
			data["Error"] = "Something went wrong. Please try again."
		}
	}
	h.Templates.Render(w, "track.html", data)
}
