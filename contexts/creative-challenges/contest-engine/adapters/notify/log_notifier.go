package notify

import (
	"context"
	"fmt"
	"log/slog"

	"studio/contexts/creative-challenges/contest-engine/ports"
)

// LogNotifier writes prize notifications to the structured log. It stands in
// for the delivery channel until one is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) NotifyPrize(ctx context.Context, notification ports.PrizeNotification) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "prize notification",
		"event", "contest_prize_notification_sent",
		"module", "creative-challenges/contest-engine",
		"layer", "adapter",
		"contest_id", notification.ContestID,
		"user_id", notification.UserID,
		"submission_id", notification.SubmissionID,
		"rank", notification.Rank,
		"message", Message(notification),
	)
	return nil
}

// Message renders the text shown to the winner.
func Message(notification ports.PrizeNotification) string {
	title := notification.ContestTitle
	if title == "" {
		title = notification.ContestID
	}
	return fmt.Sprintf("You placed #%d in %q and won %s %s",
		notification.Rank,
		title,
		notification.PrizeValue,
		notification.PrizeType,
	)
}

var _ ports.PrizeNotifier = LogNotifier{}
