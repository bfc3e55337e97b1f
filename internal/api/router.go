package api

import (
	"database/sql"
	"net/http"

	"assetdesk/internal/geo"
	"assetdesk/internal/model"
	"assetdesk/internal/workflow"
)

// NewRouter creates the API router with all endpoints registered. The
// locator may be nil when no geolocation backend is configured.
func NewRouter(db *sql.DB, jwtSecret string, engine *workflow.Engine, locator geo.Provider) http.Handler {
	mux := http.NewServeMux()

	authHandler := NewAuthHandler(db, jwtSecret)
	usersHandler := &UsersHandler{DB: db}
	assetsHandler := &AssetsHandler{DB: db, Engine: engine}
	scansHandler := &ScansHandler{DB: db, Engine: engine, Locator: locator}
	handoversHandler := &HandoversHandler{DB: db, Engine: engine}
	auditsHandler := &AuditsHandler{DB: db, Engine: engine}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Assets: registry writes are admin only; reads and status updates are
	// open to every authenticated role (the workflow engine gates actions).
	mux.Handle("GET /api/assets", authMW(http.HandlerFunc(assetsHandler.List)))
	mux.Handle("POST /api/assets", authMW(requireAdmin(http.HandlerFunc(assetsHandler.Create))))
	mux.Handle("GET /api/assets/{id}", authMW(http.HandlerFunc(assetsHandler.Get)))
	mux.Handle("PUT /api/assets/{id}", authMW(requireAdmin(http.HandlerFunc(assetsHandler.Update))))
	mux.Handle("DELETE /api/assets/{id}", authMW(requireAdmin(http.HandlerFunc(assetsHandler.Delete))))
	mux.Handle("GET /api/assets/{id}/qr", authMW(http.HandlerFunc(assetsHandler.QRCode)))
	mux.Handle("PUT /api/assets/{id}/status", authMW(http.HandlerFunc(assetsHandler.UpdateStatus)))

	// Scanning and the scan activity log.
	mux.Handle("POST /api/scan/decode", authMW(http.HandlerFunc(scansHandler.Decode)))
	mux.Handle("POST /api/scans", authMW(http.HandlerFunc(scansHandler.Record)))
	mux.Handle("GET /api/scans", authMW(http.HandlerFunc(scansHandler.List)))
	mux.Handle("GET /api/scans/{id}", authMW(http.HandlerFunc(scansHandler.Get)))
	mux.Handle("POST /api/scans/{id}/view", authMW(http.HandlerFunc(scansHandler.MarkViewed)))

	// Hand-over requests and the approval chain.
	mux.Handle("POST /api/handovers", authMW(http.HandlerFunc(handoversHandler.Create)))
	mux.Handle("GET /api/handovers", authMW(http.HandlerFunc(handoversHandler.List)))
	mux.Handle("GET /api/handovers/queue", authMW(http.HandlerFunc(handoversHandler.Queue)))
	mux.Handle("GET /api/handovers/{id}", authMW(http.HandlerFunc(handoversHandler.Get)))
	mux.Handle("POST /api/handovers/{id}/decision", authMW(http.HandlerFunc(handoversHandler.Decide)))
	mux.Handle("GET /api/handovers/{id}/reviews", authMW(http.HandlerFunc(handoversHandler.Reviews)))
	mux.Handle("PUT /api/handovers/{id}/picture", authMW(http.HandlerFunc(handoversHandler.UploadPicture)))
	mux.Handle("GET /api/handovers/{id}/picture", authMW(http.HandlerFunc(handoversHandler.GetPicture)))

	// Audit records.
	mux.Handle("POST /api/audits", authMW(http.HandlerFunc(auditsHandler.Create)))
	mux.Handle("GET /api/audits", authMW(http.HandlerFunc(auditsHandler.List)))
	mux.Handle("GET /api/audits/{id}", authMW(http.HandlerFunc(auditsHandler.Get)))

	return mux
}
