// Package httpserver exposes the loyalty API over HTTP.
package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kahvekart/kahve-kart/internal/model"
	"github.com/kahvekart/kahve-kart/internal/observability"
	"github.com/kahvekart/kahve-kart/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth    service.AuthService
	stamps  service.StampService
	coupons service.CouponService
	scan    service.ScanService
	admins  service.AdminService
	metrics *observability.ScanMetrics
	signKey []byte
	log     *zap.Logger
}

// New constructs a Server with injected services.
func New(
	auth service.AuthService,
	stamps service.StampService,
	coupons service.CouponService,
	scan service.ScanService,
	admins service.AdminService,
	metrics *observability.ScanMetrics,
	signKey []byte,
	log *zap.Logger,
) *Server {
	return &Server{
		auth:    auth,
		stamps:  stamps,
		coupons: coupons,
		scan:    scan,
		admins:  admins,
		metrics: metrics,
		signKey: signKey,
		log:     log,
	}
}

// Routes assembles the router: public auth endpoints, token-guarded member
// endpoints, the admin scan endpoint and the superadmin account endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log))
	r.Use(Logging(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", s.handleRegister)
		api.Post("/auth/login", s.handleLogin)
		api.Post("/auth/verification/confirm", s.handleConfirmVerification)

		api.Group(func(priv chi.Router) {
			priv.Use(Authenticate(s.signKey))

			priv.Get("/auth/verification", s.handleCheckVerification)
			priv.Post("/auth/verification/resend", s.handleResendVerification)

			priv.Get("/me/stamps", s.handleMyStamps)
			priv.Get("/me/coupons", s.handleMyCoupons)

			priv.Group(func(staff chi.Router) {
				staff.Use(RequireRole(model.RoleAdmin))
				staff.Post("/scan", s.handleScan)
			})

			priv.Group(func(root chi.Router) {
				root.Use(RequireRole())
				root.Post("/admins", s.handleAddAdmin)
				root.Get("/admins", s.handleListAdmins)
				root.Delete("/admins/{id}", s.handleRemoveAdmin)
			})
		})
	})

	return r
}
