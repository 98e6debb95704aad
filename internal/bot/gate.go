package bot

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "gastobot/internal/errors"
	"gastobot/internal/logger"
	"gastobot/internal/models"
	"gastobot/internal/ratelimit"
	"gastobot/internal/services"
)

// Gate is the single entry point for inbound events. It enforces the
// intake checks (idempotency, rate limit, blocked user) and wraps command
// processing in one database transaction per message. Replies are
// delivered only after the transaction commits, so a delivery failure can
// never roll back recorded state.
type Gate struct {
	db      *gorm.DB
	limiter *ratelimit.Limiter
	sender  Sender
	router  *Router
}

// NewGate creates a new intake gate.
func NewGate(db *gorm.DB, limiter *ratelimit.Limiter, sender Sender, router *Router) *Gate {
	return &Gate{db: db, limiter: limiter, sender: sender, router: router}
}

// Handle processes one inbound event end to end. Duplicate deliveries are
// dropped silently; intake rejections answer with a notice and never reach
// the command router.
func (g *Gate) Handle(ctx context.Context, event Event) error {
	log := logger.Get()

	if event.MessageID == "" || event.SenderID == "" {
		log.Warnw("event missing provider ids, dropped", "provider", event.Provider)
		return nil
	}

	entry := &models.MessageLog{
		Provider:          event.Provider,
		ProviderMessageID: event.MessageID,
		ChatID:            event.ChatID,
		Direction:         "in",
		Text:              event.Text,
		Status:            models.MessageStatusReceived,
	}
	result := g.db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		log.Debugw("duplicate message ignored",
			"code", apperrors.ErrDuplicateMessage.Code,
			"provider", event.Provider,
			"provider_message_id", event.MessageID,
		)
		return nil
	}

	users := services.NewUserService(g.db)
	user, err := users.GetOrCreateByPhone(event.SenderID)
	if err != nil {
		g.setStatus(entry, models.MessageStatusFailed, err.Error())
		g.deliver(ctx, event, []Outbound{{Text: apperrors.ErrInternalServer.Message}})
		return err
	}

	if !g.limiter.Allow(user.ID) {
		log.Infow("message rate limited", "user_id", user.ID)
		g.setStatus(entry, models.MessageStatusRateLimited, "")
		g.deliver(ctx, event, []Outbound{{Text: apperrors.ErrRateLimited.Message}})
		return nil
	}

	if user.IsBlocked {
		log.Infow("message from blocked user", "user_id", user.ID)
		g.setStatus(entry, models.MessageStatusBlocked, "")
		g.deliver(ctx, event, []Outbound{{Text: apperrors.ErrBlockedUser.Message}})
		return nil
	}

	if err := users.Touch(user); err != nil {
		log.Warnw("failed to update last_seen", "user_id", user.ID, "error", err)
	}

	var replies []Outbound
	txErr := g.db.Transaction(func(tx *gorm.DB) error {
		var err error
		replies, err = g.router.Dispatch(tx, user, event)
		return err
	})
	if txErr != nil {
		var appErr *apperrors.AppError
		if errors.As(txErr, &appErr) && appErr.Handled() {
			// A rejection the user can act on: nothing was persisted,
			// but the message itself counts as processed.
			g.setStatus(entry, models.MessageStatusProcessed, appErr.Code)
			g.deliver(ctx, event, []Outbound{{Text: appErr.Message}})
			return nil
		}
		log.Errorw("message processing failed",
			"user_id", user.ID,
			"provider_message_id", event.MessageID,
			"error", txErr,
		)
		g.setStatus(entry, models.MessageStatusFailed, txErr.Error())
		g.deliver(ctx, event, []Outbound{{Text: apperrors.ErrInternalServer.Message}})
		return txErr
	}

	g.setStatus(entry, models.MessageStatusProcessed, "")
	g.deliver(ctx, event, replies)
	return nil
}

func (g *Gate) setStatus(entry *models.MessageLog, status models.MessageStatus, errText string) {
	updates := map[string]interface{}{"status": status}
	if errText != "" {
		updates["error"] = errText
	}
	if err := g.db.Model(entry).Updates(updates).Error; err != nil {
		logger.Get().Errorw("failed to update message log", "message_log_id", entry.ID, "error", err)
	}
}

// deliver sends every reply, logging failures without propagating them.
func (g *Gate) deliver(ctx context.Context, event Event, replies []Outbound) {
	to := event.ChatID
	if to == "" {
		to = event.SenderID
	}
	for _, reply := range replies {
		var err error
		if reply.Confirm != nil {
			err = g.sender.SendConfirmButtons(ctx, to, reply.Text, reply.Confirm.ExpenseID)
		} else {
			err = g.sender.SendText(ctx, to, reply.Text)
		}
		if err != nil {
			logger.Get().Errorw("failed to deliver reply", "to", to, "error", err)
		}
	}
}
