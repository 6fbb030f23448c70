package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"course-marketplace/internal/domain/ports/adapter"
	"course-marketplace/internal/usecase"
)

type Server struct {
	checkoutUC usecase.CheckoutUseCase
	paymentUC  usecase.PaymentUseCase
	refundUC   usecase.RefundUseCase
	orderUC    usecase.OrderUseCase
	statsUC    usecase.StatsUseCase
	supportUC  usecase.SupportUseCase
	profileUC  usecase.ProfileUseCase
	providers  map[string]adapter.PaymentProvider
	auth       *AuthManager
	log        *zerolog.Logger
}

func NewServer(
	checkoutUC usecase.CheckoutUseCase,
	paymentUC usecase.PaymentUseCase,
	refundUC usecase.RefundUseCase,
	orderUC usecase.OrderUseCase,
	statsUC usecase.StatsUseCase,
	supportUC usecase.SupportUseCase,
	profileUC usecase.ProfileUseCase,
	providers map[string]adapter.PaymentProvider,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		checkoutUC: checkoutUC,
		paymentUC:  paymentUC,
		refundUC:   refundUC,
		orderUC:    orderUC,
		statsUC:    statsUC,
		supportUC:  supportUC,
		profileUC:  profileUC,
		providers:  providers,
		auth:       auth,
		log:        logger,
	}
}

// Router wires every route. Webhook endpoints sit outside /api/v1 and outside
// auth: providers authenticate with signatures, not sessions.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhooks/stripe", s.handleWebhook("stripe"))
	r.Post("/webhooks/paypal", s.handleWebhook("paypal"))

	r.Route("/api/v1", func(r chi.Router) {
		// Guest endpoints authenticate by email, not session.
		r.Post("/checkout/guest", s.handleGuestCheckout)
		r.Post("/checkout/guest/verify", s.handleGuestVerify)
		r.Post("/support/chat", s.handleSupportChat)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireAuth)
			r.Post("/checkout/session", s.handleCheckout)
			r.Get("/checkout/verify", s.handleVerify)
			r.Get("/orders", s.handleListOrders)
			r.Get("/orders/{id}", s.handleGetOrder)
			r.Get("/orders/{id}/invoice", s.handleGetInvoice)
			r.Post("/payment-methods", s.handleSaveMethod)
			r.Get("/payment-methods", s.handleListMethods)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireAuth, s.auth.RequireAdmin)
			r.Post("/orders/{id}/refund", s.handleRefund)
			r.Get("/admin/stats", s.handleStats)
		})
	})

	return r
}
