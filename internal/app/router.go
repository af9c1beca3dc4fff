package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	"github.com/quillbooks/quillbooks/internal/ledger/export"
	"github.com/quillbooks/quillbooks/internal/ledger/journal"
	"github.com/quillbooks/quillbooks/internal/ledger/recon"
	"github.com/quillbooks/quillbooks/internal/ledger/reports"
	"github.com/quillbooks/quillbooks/internal/observability"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Metrics         *observability.Metrics
	AccountsHandler *accounts.Handler
	JournalHandler  *journal.Handler
	ReportsHandler  *reports.Handler
	ReconHandler    *recon.Handler
	ExportHandler   *export.Handler
}

// NewRouter constructs the chi.Router with Quillbooks defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(params.Metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/accounts", params.AccountsHandler.MountRoutes)
		api.Route("/journal-entries", params.JournalHandler.MountRoutes)
		api.Route("/reports", params.ReportsHandler.MountRoutes)
		api.Route("/reconciliation", params.ReconHandler.MountRoutes)
		if params.ExportHandler != nil {
			api.Route("/exports", params.ExportHandler.MountRoutes)
		}
	})

	return r
}
