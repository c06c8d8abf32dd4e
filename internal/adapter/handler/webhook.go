package handler

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/webhook"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-processor/errors"
	"github.com/johnquangdev/meeting-processor/pkg/ai"
)

const (
	livekitRoomFinished = "room_finished"

	assemblyAISignatureHeader = "X-AssemblyAI-Signature"
	assemblyAIStatusCompleted = "completed"

	maxWebhookBody = 1 << 20
)

// Triggerer starts a scheduler tick out of band
type Triggerer interface {
	Trigger() bool
}

// WebhookHandler turns upstream notifications into scheduler ticks. The
// scheduler re-reads the transcript source, so events carry no payload into
// the pipeline.
type WebhookHandler struct {
	trigger          Triggerer
	livekitKeys      auth.KeyProvider
	assemblyAISecret string
	logger           *zap.Logger
}

// NewWebhookHandler creates a new webhook handler. Empty credentials disable
// the matching webhook.
func NewWebhookHandler(trigger Triggerer, livekitAPIKey, livekitSecret, assemblyAISecret string, logger *zap.Logger) *WebhookHandler {
	h := &WebhookHandler{
		trigger:          trigger,
		assemblyAISecret: assemblyAISecret,
		logger:           logger,
	}
	if livekitAPIKey != "" && livekitSecret != "" {
		h.livekitKeys = auth.NewSimpleKeyProvider(livekitAPIKey, livekitSecret)
	}
	return h
}

type webhookAck struct {
	Status    string `json:"status"`
	Event     string `json:"event,omitempty"`
	Triggered bool   `json:"triggered"`
}

// HandleLiveKitWebhook handles POST /webhooks/livekit
// @Summary      LiveKit Webhook
// @Description  Receives signed LiveKit events; room_finished triggers a scheduler tick
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  common.SuccessResponse
// @Failure      401  {object}  common.ErrorResponse
// @Failure      503  {object}  common.ErrorResponse
// @Router       /webhooks/livekit [post]
func (h *WebhookHandler) HandleLiveKitWebhook(c echo.Context) error {
	if h.livekitKeys == nil {
		return HandleError(h.logger, c, errors.ErrIntegrationNotConfigured("livekit"))
	}

	event, err := webhook.ReceiveWebhookEvent(c.Request(), h.livekitKeys)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidWebhookSignature("livekit", err))
	}

	ack := webhookAck{Status: "ok", Event: event.GetEvent()}
	if event.GetEvent() == livekitRoomFinished {
		ack.Triggered = h.fire("livekit", zap.String("room", event.GetRoom().GetName()))
	} else if h.logger != nil {
		h.logger.Debug("ignoring livekit event", zap.String("event", event.GetEvent()))
	}
	return HandleSuccess(h.logger, c, ack)
}

type assemblyAIWebhook struct {
	TranscriptID string `json:"transcript_id"`
	Status       string `json:"status"`
}

// HandleAssemblyAIWebhook handles POST /webhooks/assemblyai
// @Summary      AssemblyAI Webhook
// @Description  Receives HMAC-signed transcript status callbacks; a completed transcript triggers a scheduler tick
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  common.SuccessResponse
// @Failure      400  {object}  common.ErrorResponse
// @Failure      401  {object}  common.ErrorResponse
// @Failure      503  {object}  common.ErrorResponse
// @Router       /webhooks/assemblyai [post]
func (h *WebhookHandler) HandleAssemblyAIWebhook(c echo.Context) error {
	if h.assemblyAISecret == "" {
		return HandleError(h.logger, c, errors.ErrIntegrationNotConfigured("assemblyai"))
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	signature := strings.TrimSpace(c.Request().Header.Get(assemblyAISignatureHeader))
	if !ai.VerifyHMAC(h.assemblyAISecret, body, strings.ToLower(signature)) {
		return HandleError(h.logger, c, errors.ErrInvalidWebhookSignature("assemblyai", nil))
	}

	var payload assemblyAIWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	ack := webhookAck{Status: "ok", Event: payload.Status}
	if strings.EqualFold(payload.Status, assemblyAIStatusCompleted) {
		ack.Triggered = h.fire("assemblyai", zap.String("transcript_id", payload.TranscriptID))
	} else if h.logger != nil {
		h.logger.Warn("assemblyai transcript not completed",
			zap.String("transcript_id", payload.TranscriptID),
			zap.String("status", payload.Status),
		)
	}
	return HandleSuccess(h.logger, c, ack)
}

func (h *WebhookHandler) fire(source string, field zap.Field) bool {
	if h.trigger == nil {
		return false
	}
	started := h.trigger.Trigger()
	if h.logger != nil {
		h.logger.Info("🪝 webhook triggered tick",
			zap.String("source", source),
			field,
			zap.Bool("started", started),
		)
	}
	return started
}
