package web

import (
	"io"
	"net/http"
)

const maxWebhookBodyBytes = int64(256 * 1024)

// handleWebhook verifies the delivery with the named provider and hands the
// decoded event to the payment flow. The full header set is forwarded because
// PayPal signs across several transmission headers, not one. A non-2xx status
// makes the provider retry delivery, so only verification failures return 400;
// processing failures return 500 and rely on the retry.
func (s *Server) handleWebhook(gateway string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, ok := s.providers[gateway]
		if !ok {
			http.Error(w, "Unknown gateway", http.StatusNotFound)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusServiceUnavailable)
			return
		}

		ev, err := provider.VerifyWebhook(r.Context(), payload, r.Header)
		if err != nil {
			s.log.Warn().Err(err).Str("gateway", gateway).Msg("webhook verification failed")
			http.Error(w, "Invalid signature", http.StatusBadRequest)
			return
		}

		if err := s.paymentUC.HandleWebhookEvent(r.Context(), gateway, ev); err != nil {
			s.log.Error().Err(err).Str("gateway", gateway).Str("type", ev.Type).
				Msg("webhook processing failed")
			http.Error(w, "Processing failed", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Received bool `json:"received"`
		}{Received: true})
	}
}
