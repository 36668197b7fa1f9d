package http

import (
	"log/slog"
	"net/http"

	"weddingsite/internal/delivery/http/controllers"
	h "weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/delivery/http/middleware"
	"weddingsite/internal/domain"
	"weddingsite/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Guest    *controllers.GuestController
	RSVP     *controllers.RSVPController
	Photo    *controllers.PhotoController
	Message  *controllers.MessageController
	Settings *controllers.SettingsController
	Auth     *controllers.AuthController
}

// HealthResponse is the data of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health godoc
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status is ok"
// @Router /health [get]
func Health(w http.ResponseWriter, _ *http.Request) {
	h.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// NewRouter initializes the HTTP router with all application routes.
// Privileged routes go through RequireAuth with verifier.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	admin := middleware.RequireAuth(verifier, logger)

	// Guests
	mux.HandleFunc("POST /api/guests/register", c.Guest.Register)
	mux.HandleFunc("GET /api/guests", admin(c.Guest.List))
	mux.HandleFunc("GET /api/guests/pending", admin(c.Guest.ListPending))
	mux.HandleFunc("POST /api/guests/{id}/approve", admin(c.Guest.Approve))
	mux.HandleFunc("POST /api/guests/{id}/reject", admin(c.Guest.Reject))
	mux.HandleFunc("POST /api/guests/delete-selected", admin(c.Guest.DeleteSelected))
	mux.HandleFunc("DELETE /api/guests/all", admin(c.Guest.DeleteAll))
	mux.HandleFunc("POST /api/invites/send", admin(c.Guest.SendInvitations))
	mux.HandleFunc("GET /api/guest-portal/{token}", c.Guest.Portal)

	// RSVP
	mux.HandleFunc("GET /api/rsvp/{token}", c.RSVP.Get)
	mux.HandleFunc("POST /api/rsvp/{token}/submit", c.RSVP.Submit)
	mux.HandleFunc("GET /api/rsvps", admin(c.RSVP.List))
	mux.HandleFunc("GET /api/rsvps/export", admin(c.RSVP.Export))
	mux.HandleFunc("POST /api/reminders/send", admin(c.RSVP.SendReminders))

	// Messages
	mux.HandleFunc("POST /api/messages", c.Message.Send)
	mux.HandleFunc("GET /api/messages", admin(c.Message.List))
	mux.HandleFunc("PATCH /api/messages/{id}/read", admin(c.Message.MarkRead))

	// Photos
	mux.HandleFunc("POST /api/photos/upload", c.Photo.Upload)
	mux.HandleFunc("GET /api/photos", c.Photo.ListApproved)
	mux.HandleFunc("GET /api/admin/photos", admin(c.Photo.ListAll))
	mux.HandleFunc("GET /api/admin/photos/pending", admin(c.Photo.ListPending))
	mux.HandleFunc("PATCH /api/admin/photos/{id}/approve", admin(c.Photo.Approve))
	mux.HandleFunc("PATCH /api/admin/photos/{id}/reject", admin(c.Photo.Reject))
	mux.HandleFunc("DELETE /api/admin/photos/{id}", admin(c.Photo.Delete))
	mux.HandleFunc("POST /api/admin/photos/bulk-approve", admin(c.Photo.BulkApprove))
	mux.HandleFunc("POST /api/admin/photos/bulk-delete", admin(c.Photo.BulkDelete))
	mux.HandleFunc("POST /api/admin/photos/download-zip", admin(c.Photo.DownloadZip))

	// Settings
	mux.HandleFunc("GET /api/admin/settings/auto-approve", admin(c.Settings.GetAutoApprove))
	mux.HandleFunc("POST /api/admin/settings/auto-approve", admin(c.Settings.SetAutoApprove))

	// Auth
	mux.HandleFunc("POST /api/auth/login", c.Auth.Login)
	mux.HandleFunc("POST /api/auth/logout", c.Auth.Logout)
	mux.HandleFunc("GET /api/auth/me", admin(c.Auth.Me))
	mux.HandleFunc("GET /api/auth/verify", admin(c.Auth.Verify))

	// System
	mux.HandleFunc("GET /health", Health)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with tracing, CORS and request logging, outermost first.
func NewHandler(mux http.Handler, serviceName string, allowedOrigins []string, logger *slog.Logger) http.Handler {
	return telemetry.Middleware(serviceName,
		middleware.CORS(allowedOrigins,
			middleware.LoggingMiddleware(logger, mux)))
}
