// Package api exposes the HTTP surface: the LINE webhook, health and admin
// endpoints, and the MCP server.
package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/shopwatch/internal/line"
)

const maxWebhookBodySize = 1 << 20 // 1MB

// MessageHandler produces the reply text for one user message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, userID, text string) string
}

// Replier sends the reply back over the messaging channel.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// WebhookDeps holds dependencies for the webhook handler.
type WebhookDeps struct {
	ChannelSecret string
	Bot           MessageHandler
	Replier       Replier
	Logger        *slog.Logger
}

// webhookEvent mirrors the LINE webhook payload; only text message events are
// acted on, everything else is acknowledged and dropped.
type webhookEvent struct {
	Type    string `json:"type"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
	Source struct {
		UserID string `json:"userId"`
	} `json:"source"`
	ReplyToken string `json:"replyToken"`
}

type webhookBody struct {
	Events []webhookEvent `json:"events"`
}

// NewWebhookHandler returns the public router: home, health, and the LINE
// callback endpoint.
func NewWebhookHandler(deps WebhookDeps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Get("/", handleHome)
	r.Get("/health", handleHealth)
	r.Post("/callback", handleCallback(deps))
	return r
}

func handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("SmartShopSaver LINE Bot is running"))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleCallback validates the signature, dispatches each text message event
// to the bot, and replies. Events are processed synchronously; LINE retries
// the whole delivery on non-200, so per-event failures are logged, not
// surfaced.
func handleCallback(deps WebhookDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodySize)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading body: %v", err)
			return
		}

		signature := r.Header.Get("X-Line-Signature")
		if !line.ValidateSignature(deps.ChannelSecret, body, signature) {
			deps.Logger.Warn("webhook signature validation failed")
			httpError(w, http.StatusBadRequest, "invalid_signature", "invalid signature")
			return
		}

		var payload webhookBody
		if err := json.Unmarshal(body, &payload); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid payload: %v", err)
			return
		}

		for _, ev := range payload.Events {
			if ev.Type != "message" || ev.Message.Type != "text" {
				continue
			}

			reply := deps.Bot.HandleMessage(r.Context(), ev.Source.UserID, ev.Message.Text)
			if err := deps.Replier.Reply(r.Context(), ev.ReplyToken, reply); err != nil {
				deps.Logger.Error("webhook reply failed", "user", ev.Source.UserID, "error", err)
			}
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("OK"))
	}
}
