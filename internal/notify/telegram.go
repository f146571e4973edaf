package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/dkoshelev/restobook/internal/model"
)

// TelegramNotifier posts lifecycle events to a staff chat.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID string
	logger *zap.Logger
}

func NewTelegramNotifier(token, chatID string, logger *zap.Logger) (*TelegramNotifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    b,
		chatID: chatID,
		logger: logger,
	}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, event model.Event) {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   formatEvent(event),
	})
	if err != nil {
		n.logger.Warn("send telegram notification",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
	}
}

func formatEvent(event model.Event) string {
	r := event.Reservation
	window := r.Window()

	tableLabel := fmt.Sprintf("#%d", r.TableID)
	if r.Table != nil {
		tableLabel = r.Table.Number
	}

	header := ""
	switch event.Type {
	case model.EventReservationCreated:
		header = "New reservation"
	case model.EventReservationRescheduled:
		header = "Reservation moved"
	case model.EventReservationCancelled:
		header = "Reservation cancelled"
	default:
		header = string(event.Type)
	}

	text := fmt.Sprintf(
		"%s\n\nTable: %s\nGuest: %s\nParty: %d\nTime: %s - %s",
		header,
		tableLabel,
		r.ContactName,
		r.PartySize,
		window.Start.Format("02.01.2006 15:04"),
		window.End.Format("15:04"),
	)
	if event.Type == model.EventReservationCancelled && r.CancelReason != "" {
		text += "\nReason: " + r.CancelReason
	}
	return text
}
