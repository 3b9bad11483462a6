package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PabloGalante/taborra-agent/internal/adapters/homeassistant"
	"github.com/PabloGalante/taborra-agent/internal/adapters/whatsapp"
	"github.com/PabloGalante/taborra-agent/internal/app/conversation"
	"github.com/PabloGalante/taborra-agent/internal/app/dialogue"
	"github.com/PabloGalante/taborra-agent/internal/app/ratings"
	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

const maxBodyBytes = 1 << 20

// Options configures webhook verification. Empty secrets disable the
// corresponding check.
type Options struct {
	VerifyToken   string
	AppSecret     string
	CallbackToken string
	Gatherer      prometheus.Gatherer
}

type Server struct {
	svc     *conversation.Service
	ratings *ratings.Service
	opts    Options
}

func NewServer(svc *conversation.Service, ratingsSvc *ratings.Service, opts Options) http.Handler {
	s := &Server{svc: svc, ratings: ratingsSvc, opts: opts}
	mux := http.NewServeMux()

	// /webhook/whatsapp → GET: subscription handshake, POST: inbound message
	mux.HandleFunc("/webhook/whatsapp", s.handleWhatsApp)

	// /webhook/home_assistant_response → POST: asynchronous automation result
	mux.HandleFunc("/webhook/home_assistant_response", s.handleAutomationCallback)

	// /trigger_home_assistant → POST: run an automation method for a phone
	mux.HandleFunc("/trigger_home_assistant", s.handleTriggerAutomation)

	// /ratings/summary → GET: rating averages per device and problem
	mux.HandleFunc("/ratings/summary", s.handleRatingsSummary)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return chainMiddlewares(mux, withLogging, withCORS, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type statusResponse struct {
	Status string `json:"status"`
}

type callbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type triggerRequest struct {
	Phone  string         `json:"phone"`
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

// ─────────────────────────────────────────────
// WhatsApp webhook
// ─────────────────────────────────────────────

func (s *Server) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleVerify(w, r)
	case http.MethodPost:
		s.handleInbound(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	challenge, ok := whatsapp.VerifySubscription(
		q.Get("hub.mode"),
		q.Get("hub.verify_token"),
		q.Get("hub.challenge"),
		s.opts.VerifyToken,
	)
	if !ok {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "verification failed"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, challenge)
}

func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	log := observability.LoggerFromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		badRequest(w, "unreadable body")
		return
	}

	if s.opts.AppSecret != "" {
		if err := whatsapp.VerifySignature(s.opts.AppSecret, r.Header.Get(whatsapp.SignatureHeader), body); err != nil {
			log.Warn("rejected webhook signature", "error", err)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
			return
		}
	}

	msg, ok, err := whatsapp.ParseWebhook(body)
	if err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, statusResponse{Status: "ignored"})
		return
	}

	out, err := s.svc.HandleInbound(r.Context(), conversation.InboundMessage{
		MessageID: msg.ID,
		Phone:     msg.Phone,
		Name:      msg.Name,
		Text:      msg.Text,
	})
	if err != nil {
		// The channel retries non-2xx answers; the message is already deduplicated.
		log.Error("inbound message failed", "message_id", msg.ID, "error", err)
		writeJSON(w, http.StatusOK, statusResponse{Status: "error"})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: string(out.Status)})
}

// ─────────────────────────────────────────────
// Home automation
// ─────────────────────────────────────────────

func (s *Server) handleAutomationCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.authorizedCallback(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid callback token"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		badRequest(w, "unreadable body")
		return
	}

	cb, err := homeassistant.ParseCallback(body)
	if err != nil {
		if errors.Is(err, homeassistant.ErrIncompleteCallback) {
			writeJSON(w, http.StatusBadRequest, callbackResponse{Message: "Faltan datos requeridos (phone o conversation_id)"})
			return
		}
		badRequest(w, "invalid JSON body")
		return
	}

	if err := s.svc.HandleAutomationReply(r.Context(), replyFromCallback(cb)); err != nil {
		observability.LoggerFromContext(r.Context()).Error("automation callback failed", "error", err)
		writeJSON(w, http.StatusOK, callbackResponse{Message: "Error al procesar respuesta"})
		return
	}
	writeJSON(w, http.StatusOK, callbackResponse{Success: true, Message: "Respuesta procesada correctamente"})
}

func (s *Server) authorizedCallback(r *http.Request) bool {
	if s.opts.CallbackToken == "" {
		return true
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return token == s.opts.CallbackToken
}

// replyFromCallback renders a callback as the message the user receives.
func replyFromCallback(cb homeassistant.Callback) conversation.AutomationReply {
	reply := conversation.AutomationReply{
		Phone:          cb.Phone,
		ConversationID: domain.ConversationID(cb.ConversationID),
	}

	switch {
	case cb.TextMessage != "":
		reply.Text = cb.TextMessage
	case cb.ImageURL != "":
		reply.ImageURL = cb.ImageURL
		reply.Caption = cb.Caption
	case len(cb.Results) > 0:
		reply.Text = formatResults(cb.Method, cb.Results)
	case cb.Error != "":
		reply.Text = "⚠️ Error: " + cb.Error
	default:
		reply.Text = "Se ha recibido una respuesta de tu sistema, pero no pudo ser procesada correctamente."
	}
	return reply
}

func formatResults(method string, raw json.RawMessage) string {
	switch method {
	case domain.MethodAlarmStatus:
		if partitions, ok := homeassistant.DecodePartitions(raw); ok {
			return dialogue.FormatAlarmStatus(partitions)
		}
	case domain.MethodScanCameras:
		if cameras, ok := homeassistant.DecodeCameras(raw); ok {
			return dialogue.FormatCameras(cameras)
		}
	}
	return homeassistant.RawResults(method, raw)
}

func (s *Server) handleTriggerAutomation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req triggerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Phone == "" || req.Method == "" {
		badRequest(w, "phone and method are required")
		return
	}

	out, err := s.svc.TriggerAutomation(r.Context(), req.Phone, req.Method, req.Params)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
	case errors.Is(err, conversation.ErrNoTool):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "home automation disabled"})
	case err != nil:
		internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

// ─────────────────────────────────────────────
// Ratings
// ─────────────────────────────────────────────

func (s *Server) handleRatingsSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	summary, err := s.ratings.Summary(r.Context(), r.URL.Query().Get("device_type"))
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	observability.Logger().Error("internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
