package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/workgrid/contract-engine/internal/ports"
)

// NewRouter mounts the public API. Probes sit outside the auth middleware so
// orchestrators can hit them without credentials.
func NewRouter(h *Handler, verifier ports.TokenVerifier, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(Logging(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(Authenticate(verifier))

		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", h.ProposeContract)
			r.Get("/", h.ListContracts)

			r.Route("/{contractID}", func(r chi.Router) {
				r.Get("/", h.GetContract)
				r.Post("/sign", h.SignContract)
				r.Post("/reject", h.RejectContract)
				r.Post("/cancel", h.CancelContract)
				r.Post("/complete", h.CompleteContract)
				r.Post("/terminate", h.TerminateContract)
				r.Post("/dispute", h.DisputeContract)
				r.Get("/escrow", h.GetEscrowHold)

				r.Route("/milestones/{milestoneID}", func(r chi.Router) {
					r.Post("/evidence", h.SubmitMilestoneEvidence)
					r.Post("/approve", h.ApproveMilestone)
				})
			})
		})

		r.Route("/wallets/{ownerType}/{ownerID}", func(r chi.Router) {
			r.Get("/", h.GetWallet)
			r.Post("/deposit", h.Deposit)
			r.Post("/withdraw", h.Withdraw)
		})
	})

	return r
}
