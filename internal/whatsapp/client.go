// Package whatsapp implements the outbound side of the WhatsApp Cloud API:
// plain text messages and the confirm/reject button prompt.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "gastobot/internal/errors"
	"gastobot/internal/logger"
)

const defaultBaseURL = "https://graph.facebook.com/v20.0"

// Client sends messages through one WhatsApp business phone number.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	phoneID     string
}

// NewClient creates a new Cloud API client.
func NewClient(accessToken, phoneID string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     defaultBaseURL,
		accessToken: accessToken,
		phoneID:     phoneID,
	}
}

type textPayload struct {
	Body string `json:"body"`
}

type button struct {
	Type  string      `json:"type"`
	Reply buttonReply `json:"reply"`
}

type buttonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              textPayload{Body: text},
	}
	return c.post(ctx, payload)
}

// SendConfirmButtons sends text with Confirmar/Rechazar reply buttons bound
// to the given expense.
func (c *Client) SendConfirmButtons(ctx context.Context, to, text, expenseID string) error {
	interactive := map[string]interface{}{
		"type": "button",
		"body": textPayload{Body: text},
		"action": map[string]interface{}{
			"buttons": []button{
				{Type: "reply", Reply: buttonReply{ID: "confirm_" + expenseID, Title: "Confirmar"}},
				{Type: "reply", Reply: buttonReply{ID: "decline_" + expenseID, Title: "Rechazar"}},
			},
		},
	}
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive":       interactive,
	}
	return c.post(ctx, payload)
}

func (c *Client) post(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logger.Get().Errorw("whatsapp send failed",
			"status", resp.StatusCode,
			"response", string(detail),
		)
		return apperrors.Wrap(apperrors.ErrInternalServer,
			fmt.Errorf("whatsapp api returned status %d", resp.StatusCode))
	}
	return nil
}
