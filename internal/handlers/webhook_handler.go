package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gastobot/internal/bot"
	apperrors "gastobot/internal/errors"
	"gastobot/internal/logger"
)

// MessageGate processes one normalized inbound event.
type MessageGate interface {
	Handle(ctx context.Context, event bot.Event) error
}

// WebhookHandler receives WhatsApp Cloud API callbacks: the GET
// subscription handshake and the POST message notifications.
type WebhookHandler struct {
	gate        MessageGate
	verifyToken string
	provider    string
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(gate MessageGate, verifyToken, provider string) *WebhookHandler {
	return &WebhookHandler{gate: gate, verifyToken: verifyToken, provider: provider}
}

// webhookPayload mirrors the slice of the Cloud API notification we consume.
type webhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Value struct {
				Messages []inboundMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type inboundMessage struct {
	From string `json:"from"`
	ID   string `json:"id"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"button_reply"`
	} `json:"interactive"`
}

// Verify answers the webhook subscription handshake.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken {
		c.String(http.StatusForbidden, "verification failed")
		return
	}
	c.String(http.StatusOK, challenge)
}

// Receive accepts a message notification. It always acknowledges with 200
// once the payload decodes; processing failures are logged and retried via
// the provider's redelivery, which the idempotency check absorbs.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Malformed webhook payload"))
		return
	}

	for _, event := range h.toEvents(payload) {
		if err := h.gate.Handle(c.Request.Context(), event); err != nil {
			logger.Get().Errorw("webhook event failed",
				"provider_message_id", event.MessageID,
				"error", err,
			)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (h *WebhookHandler) toEvents(payload webhookPayload) []bot.Event {
	var events []bot.Event
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				event := bot.Event{
					Provider:  h.provider,
					MessageID: msg.ID,
					SenderID:  msg.From,
					ChatID:    msg.From,
				}
				switch {
				case msg.Type == "text" && msg.Text != nil:
					event.Text = msg.Text.Body
				case msg.Type == "interactive" && msg.Interactive != nil && msg.Interactive.ButtonReply != nil:
					event.Interactive = &bot.InteractiveReply{
						ActionID: msg.Interactive.ButtonReply.ID,
						Title:    msg.Interactive.ButtonReply.Title,
					}
				default:
					logger.Get().Debugw("unsupported message type skipped",
						"type", msg.Type,
						"provider_message_id", msg.ID,
					)
					continue
				}
				events = append(events, event)
			}
		}
	}
	return events
}
