package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/usecase"
)

// ===== request/response shapes =====

type checkoutRequest struct {
	CourseIDs  []string              `json:"course_ids"`
	Method     string                `json:"method"` // stripe | paypal
	CouponCode string                `json:"coupon_code,omitempty"`
	Billing    *model.BillingAddress `json:"billing,omitempty"`
}

type guestCheckoutRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	checkoutRequest
}

type checkoutResponse struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
	Free        bool   `json:"free"`
	NewAccount  bool   `json:"new_account"`
}

type guestVerifyRequest struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
}

type refundRequest struct {
	Amount int64  `json:"amount"` // cents; 0 means full refund
	Reason string `json:"reason,omitempty"`
}

type supportChatRequest struct {
	Question string `json:"question"`
}

type supportChatResponse struct {
	Reply  string `json:"reply"`
	Intent string `json:"intent"`
}

type orderResponse struct {
	ID            string                `json:"id"`
	Number        string                `json:"number"`
	UserID        string                `json:"user_id"`
	CourseIDs     []string              `json:"course_ids"`
	Subtotal      int64                 `json:"subtotal"`
	Discount      int64                 `json:"discount"`
	Tax           int64                 `json:"tax"`
	Total         int64                 `json:"total"`
	Status        string                `json:"status"`
	PaymentMethod string                `json:"payment_method"`
	Billing       *model.BillingAddress `json:"billing,omitempty"`
	Refund        *model.RefundRecord   `json:"refund,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
}

// toOrderResponse deliberately omits the payment intent id and guest
// credential bookkeeping.
func toOrderResponse(o *model.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		Number:        o.Number,
		UserID:        o.UserID,
		CourseIDs:     o.CourseIDs,
		Subtotal:      o.Subtotal,
		Discount:      o.Discount,
		Tax:           o.Tax,
		Total:         o.Total,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		Billing:       o.Billing,
		Refund:        o.Refund,
		CreatedAt:     o.CreatedAt,
		PaidAt:        o.PaidAt,
	}
}

// ===== handlers =====

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := s.checkoutUC.Initiate(r.Context(), usecase.CheckoutInput{
		UserID:     claims.UserID(),
		CourseIDs:  req.CourseIDs,
		Method:     model.PaymentMethod(req.Method),
		CouponCode: req.CouponCode,
		Billing:    req.Billing,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCheckoutResponse(res))
}

func (s *Server) handleGuestCheckout(w http.ResponseWriter, r *http.Request) {
	var req guestCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := s.checkoutUC.GuestCheckout(r.Context(), usecase.CheckoutInput{
		Email:      req.Email,
		Name:       req.Name,
		CourseIDs:  req.CourseIDs,
		Method:     model.PaymentMethod(req.Method),
		CouponCode: req.CouponCode,
		Billing:    req.Billing,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCheckoutResponse(res))
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	o, err := s.paymentUC.VerifySession(r.Context(), sessionID, claims.UserID())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (s *Server) handleGuestVerify(w http.ResponseWriter, r *http.Request) {
	var req guestVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" || req.Email == "" {
		http.Error(w, "session_id and email are required", http.StatusBadRequest)
		return
	}

	o, err := s.paymentUC.VerifyGuestSession(r.Context(), req.SessionID, req.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := s.orderUC.ListByUser(r.Context(), claims.UserID(), offset, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	items := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, struct {
		Items []orderResponse `json:"items"`
	}{Items: items})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	o, err := s.orderUC.Get(r.Context(), chi.URLParam(r, "id"), claims.UserID(), claims.IsAdmin())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	inv, err := s.orderUC.Invoice(r.Context(), chi.URLParam(r, "id"), claims.UserID(), claims.IsAdmin())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ID       string                `json:"id"`
		Number   string                `json:"number"`
		OrderID  string                `json:"order_id"`
		Lines    []model.InvoiceLine   `json:"lines"`
		Subtotal int64                 `json:"subtotal"`
		Discount int64                 `json:"discount"`
		Tax      int64                 `json:"tax"`
		Total    int64                 `json:"total"`
		Billing  *model.BillingAddress `json:"billing,omitempty"`
		Status   string                `json:"status"`
		PaidAt   time.Time             `json:"paid_at"`
	}{
		ID:       inv.ID,
		Number:   inv.Number,
		OrderID:  inv.OrderID,
		Lines:    inv.Lines,
		Subtotal: inv.Subtotal,
		Discount: inv.Discount,
		Tax:      inv.Tax,
		Total:    inv.Total,
		Billing:  inv.Billing,
		Status:   string(inv.Status),
		PaidAt:   inv.PaidAt,
	})
}

func (s *Server) handleRefund(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	orderID := chi.URLParam(r, "id")

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	amount := req.Amount
	if amount == 0 {
		// Full refund unless a partial amount is given.
		o, err := s.orderUC.Get(r.Context(), orderID, claims.UserID(), true)
		if err != nil {
			s.writeError(w, err)
			return
		}
		amount = o.Total
	}

	o, err := s.refundUC.Refund(r.Context(), orderID, amount, req.Reason, claims.UserID())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	users, enrollments, err := s.statsUC.Totals(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	week, month, year, err := s.statsUC.Revenue(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		TotalUsers       int `json:"total_users"`
		TotalEnrollments int `json:"total_enrollments"`
		Revenue          struct {
			Week  int64 `json:"week"`
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		} `json:"revenue"`
	}{
		TotalUsers:       users,
		TotalEnrollments: enrollments,
		Revenue: struct {
			Week  int64 `json:"week"`
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		}{Week: week, Month: month, Year: year},
	})
}

func (s *Server) handleSupportChat(w http.ResponseWriter, r *http.Request) {
	var req supportChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	ans, err := s.supportUC.Ask(r.Context(), req.Question)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, supportChatResponse{Reply: ans.Reply, Intent: ans.Intent})
}

type saveMethodRequest struct {
	Gateway    string `json:"gateway"`
	CustomerID string `json:"customer_id,omitempty"`
	Brand      string `json:"brand"`
	Last4      string `json:"last4"`
	Payload    string `json:"payload"` // provider payment-method blob
}

type savedMethodResponse struct {
	ID    string `json:"id"`
	Brand string `json:"brand"`
	Last4 string `json:"last4"`
}

func (s *Server) handleSaveMethod(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req saveMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	m, err := s.profileUC.SaveMethod(r.Context(), claims.UserID(), req.Gateway, req.CustomerID, req.Brand, req.Last4, []byte(req.Payload))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, savedMethodResponse{ID: m.ID, Brand: m.Brand, Last4: m.Last4})
}

func (s *Server) handleListMethods(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	gateway := r.URL.Query().Get("gateway")
	if gateway == "" {
		gateway = "stripe"
	}

	methods, err := s.profileUC.ListMethods(r.Context(), claims.UserID(), gateway)
	if err != nil {
		s.writeError(w, err)
		return
	}
	items := make([]savedMethodResponse, 0, len(methods))
	for _, m := range methods {
		items = append(items, savedMethodResponse{ID: m.ID, Brand: m.Brand, Last4: m.Last4})
	}
	writeJSON(w, http.StatusOK, struct {
		Items []savedMethodResponse `json:"items"`
	}{Items: items})
}

// ===== helpers =====

func toCheckoutResponse(res *usecase.CheckoutResult) checkoutResponse {
	return checkoutResponse{
		OrderID:     res.OrderID,
		OrderNumber: res.OrderNumber,
		SessionID:   res.SessionID,
		RedirectURL: res.RedirectURL,
		Free:        res.Free,
		NewAccount:  res.NewAccount,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrNotFound:
		http.Error(w, "Not found", http.StatusNotFound)
	case domain.ErrPermissionDenied:
		http.Error(w, "Forbidden", http.StatusForbidden)
	case domain.ErrInvalidArgument, domain.ErrEmptyCart,
		domain.ErrCouponInvalid, domain.ErrCouponExpired,
		domain.ErrCouponUsageLimitReached, domain.ErrMinPurchaseNotMet,
		domain.ErrOrderNotCompleted, domain.ErrRefundWindowClosed,
		domain.ErrRefundAmountExceedsTotal:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case domain.ErrSessionNotPaid:
		// Payment is still in flight; the client polls again.
		http.Error(w, err.Error(), http.StatusConflict)
	case domain.ErrProviderUnavailable:
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		s.log.Error().Err(err).Msg("request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
