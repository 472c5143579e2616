package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/theMessiMagic/if-fashion/internal/export"
	"github.com/theMessiMagic/if-fashion/internal/store"
	"github.com/theMessiMagic/if-fashion/internal/upload"
)

// ignoreMissing reports whether err is an unknown ID or status. Admin actions
// on those are silent no-ops.
func ignoreMissing(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidStatus)
}

func (h *AdminHandler) backToDashboard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func (h *AdminHandler) UpdateCustomerStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	status := r.PathValue("status")

	err := h.Store.SetCustomerStatus(r.Context(), id, status)
	if err != nil && !ignoreMissing(err) {
		slog.Error("Failed to update customer status", "track_id", id, "error", err)
		http.Error(w, "Failed to update status", http.StatusInternalServerError)
		return
	}
	if err == nil {
		slog.Info("Customer status updated", "track_id", id, "status", status)
	}
	h.backToDashboard(w, r)
}

// DeleteCustomer removes the submission and its uploaded image.
func (h *AdminHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	removed, err := h.Store.DeleteCustomerSubmission(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.backToDashboard(w, r)
		return
	}
	if err != nil {
		slog.Error("Failed to delete customer submission", "track_id", id, "error", err)
		http.Error(w, "Failed to delete submission", http.StatusInternalServerError)
		return
	}

	if removed.Image != "" {
		if _, err := h.Uploads.Delete(r.Context(), upload.AreaCustomer, removed.Image); err != nil {
			slog.Warn("Failed to delete customer image", "file", removed.Image, "error", err)
		}
	}
	slog.Info("Customer submission deleted", "track_id", id)
	h.backToDashboard(w, r)
}

func (h *AdminHandler) UpdateEmployeeStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	status := r.PathValue("status")

	err := h.Store.SetEmployeeStatus(r.Context(), id, status)
	if err != nil && !ignoreMissing(err) {
		slog.Error("Failed to update employee status", "track_id", id, "error", err)
		http.Error(w, "Failed to update status", http.StatusInternalServerError)
		return
	}
	h.backToDashboard(w, r)
}

// UpdateEmployeeNote sets the salary model and admin note of an application.
func (h *AdminHandler) UpdateEmployeeNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.Store.AnnotateEmployee(r.Context(), id,
		strings.TrimSpace(r.FormValue("salary_model")),
		strings.TrimSpace(r.FormValue("admin_note")))
	if err != nil && !ignoreMissing(err) {
		slog.Error("Failed to update employee note", "track_id", id, "error", err)
		http.Error(w, "Failed to update note", http.StatusInternalServerError)
		return
	}
	h.backToDashboard(w, r)
}

// DeleteGalleryImage removes a home or design image. A missing file is not
// an error.
func (h *AdminHandler) DeleteGalleryImage(w http.ResponseWriter, r *http.Request) {
	var gallery string
	switch r.PathValue("gallery") {
	case "home":
		gallery = upload.GalleryHome
	case "design", "designs", "":
		gallery = upload.GalleryDesigns
	default:
		http.NotFound(w, r)
		return
	}

	filename := r.PathValue("filename")
	removed, err := h.Uploads.Delete(r.Context(), gallery, filename)
	if err != nil {
		slog.Error("Failed to delete gallery image", "gallery", gallery, "file", filename, "error", err)
		http.Error(w, "Failed to delete image", http.StatusInternalServerError)
		return
	}
	if removed {
		slog.Info("Gallery image deleted", "gallery", gallery, "file", filename)
	}
	h.backToDashboard(w, r)
}

// DownloadFile streams a customer image or an employee document.
func (h *AdminHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	var area string
	switch r.PathValue("area") {
	case "customer":
		area = upload.AreaCustomer
	case "employee":
		area = upload.AreaEmployee
	default:
		http.NotFound(w, r)
		return
	}
	serveBlob(w, r, h.Uploads, area, r.PathValue("filename"), "private, no-store")
}

// ExportXLSX downloads every customer request and employee application as a
// spreadsheet.
func (h *AdminHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Store.ListCustomerSubmissions(r.Context())
	if err != nil {
		http.Error(w, "Error fetching customer requests", http.StatusInternalServerError)
		return
	}
	employees, err := h.Store.ListEmployeeApplications(r.Context())
	if err != nil {
		http.Error(w, "Error fetching employee applications", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, customers, employees); err != nil {
		slog.Error("Failed to build workbook", "error", err)
		http.Error(w, "Failed to export", http.StatusInternalServerError)
		return
	}

	name := "if-fashion-" + time.Now().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(buf.Bytes())
}
