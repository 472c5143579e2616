package handlers

import (
	"io/fs"
	"net/http"

	"github.com/theMessiMagic/if-fashion/internal/metrics"
)

// Router bundles the handlers mounted by NewRouter.
type Router struct {
	Public      *PublicHandler
	Submissions *SubmissionHandler
	Admin       *AdminHandler
	Chat        *ChatHandler
	RateLimiter *RateLimiter // nil disables submission rate limiting
	Static      fs.FS        // served under /static/
	Metrics     *metrics.Metrics
}

// NewRouter registers every route. CSRF and the logging chain are applied by
// the caller.
func NewRouter(rt Router) *http.ServeMux {
	mux := http.NewServeMux()

	if rt.Static != nil {
		mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServerFS(rt.Static)))
	}

	// Public pages
	p := rt.Public
	mux.HandleFunc("GET /{$}", p.Home)
	mux.HandleFunc("GET /about", p.About)
	mux.HandleFunc("GET /designs", p.Designs)
	mux.HandleFunc("GET /contact", p.Contact)
	mux.HandleFunc("GET /media/{gallery}/{filename}", p.Media)
	mux.HandleFunc("GET /health", p.Health)

	// Submissions
	s := rt.Submissions
	mux.HandleFunc("GET /customer", s.CustomerForm)
	mux.HandleFunc("POST /customer", rt.RateLimiter.Middleware(s.SubmitCustomer))
	mux.HandleFunc("GET /careers", s.CareersForm)
	mux.HandleFunc("POST /careers", rt.RateLimiter.Middleware(s.SubmitCareers))
	mux.HandleFunc("/track", s.Track) // GET form & POST lookup

	// Chat
	mux.HandleFunc("POST /chat", rt.Chat.Chat)
	mux.HandleFunc("GET /chat/check/{id}", rt.Chat.Check)

	// Admin session
	a := rt.Admin
	mux.HandleFunc("GET /admin", a.LoginGet)
	mux.HandleFunc("POST /admin", a.LoginPost)
	mux.HandleFunc("GET /admin/signup", a.SignupGet)
	mux.HandleFunc("POST /admin/signup", a.SignupPost)
	mux.HandleFunc("/logout", a.Logout)

	// Protected Routes
	auth := a.AuthMiddleware
	mux.HandleFunc("GET /admin/dashboard", auth(a.Dashboard))
	mux.HandleFunc("POST /admin/dashboard", auth(a.UploadGallery))
	mux.HandleFunc("POST /admin/customer/status/{id}/{status}", auth(a.UpdateCustomerStatus))
	mux.HandleFunc("POST /admin/customer/delete/{id}", auth(a.DeleteCustomer))
	mux.HandleFunc("POST /admin/employee/status/{id}/{status}", auth(a.UpdateEmployeeStatus))
	mux.HandleFunc("POST /admin/employee/note/{id}", auth(a.UpdateEmployeeNote))
	mux.HandleFunc("POST /admin/delete/{gallery}/{filename}", auth(a.DeleteGalleryImage))
	mux.HandleFunc("POST /admin/delete/{filename}", auth(a.DeleteGalleryImage)) // legacy, design gallery
	mux.HandleFunc("GET /admin/files/{area}/{filename}", auth(a.DownloadFile))
	mux.HandleFunc("GET /admin/export.xlsx", auth(a.ExportXLSX))
	mux.HandleFunc("POST /admin/chat/reply", auth(a.ReplyTicket))

	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics.Handler())
	}
	return mux
}
