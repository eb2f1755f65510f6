// Package notify pushes slate and settlement summaries to Telegram.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mselser95/hoops-edge/internal/ledger"
	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
)

// sender is the part of *tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends MarkdownV2 messages to one chat.
type Telegram struct {
	bot        sender
	chatID     int64
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
	inflight   sync.WaitGroup
}

// NewTelegram connects the bot and parses the chat ID.
func NewTelegram(botToken, chatID string, logger *zap.Logger) (*Telegram, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return newTelegram(bot, id, logger), nil
}

func newTelegram(bot sender, chatID int64, logger *zap.Logger) *Telegram {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Telegram{
		bot:        bot,
		chatID:     chatID,
		maxRetries: 3,
		retryDelay: time.Second,
		logger:     logger,
	}
}

// send delivers text with linear-backoff retry.
func (t *Telegram) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < t.maxRetries; i++ {
		_, err := t.bot.Send(msg)
		if err == nil {
			NotificationsTotal.WithLabelValues("ok").Inc()
			return nil
		}
		lastErr = err
		if i < t.maxRetries-1 {
			time.Sleep(t.retryDelay * time.Duration(i+1))
		}
	}
	NotificationsTotal.WithLabelValues("error").Inc()
	return fmt.Errorf("%w: telegram send failed after %d attempts: %w", types.ErrExternalCallFailed, t.maxRetries, lastErr)
}

// NotifySlate sends the recommended bets of a slate. Slates without
// recommendations are not sent.
func (t *Telegram) NotifySlate(slate *types.DailySlate) error {
	if len(slate.Recommendations) == 0 {
		return nil
	}
	return t.send(FormatSlate(slate))
}

// Publish implements ledger.EventPublisher. Only settlements are sent, and
// delivery happens off the caller's goroutine.
func (t *Telegram) Publish(evt ledger.Event) {
	if evt.Type != ledger.EventSettled {
		return
	}
	text := FormatSettlement(evt.Bet, evt.Bankroll)
	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		err := t.send(text)
		if err != nil {
			t.logger.Warn("telegram-settlement-notify-failed",
				zap.String("bet-id", evt.Bet.ID),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every settlement notification handed to Publish has
// been delivered or given up on, or until ctx is done.
func (t *Telegram) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		t.logger.Warn("telegram-notify-drain-timeout", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

// FormatSlate renders slate recommendations as MarkdownV2.
func FormatSlate(slate *types.DailySlate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏀 *Slate %s*\n", escapeMarkdownV2(slate.Date))
	fmt.Fprintf(&b, "%s\n\n", escapeMarkdownV2(fmt.Sprintf("%d bets, %.2fu at risk",
		len(slate.Recommendations), slate.TotalUnitsAtRisk)))

	for i := range slate.Recommendations {
		r := &slate.Recommendations[i]
		fmt.Fprintf(&b, "%d\\. *%s*\n", i+1, escapeMarkdownV2(r.Game.Matchup()))
		fmt.Fprintf(&b, "   %s\n", escapeMarkdownV2(fmt.Sprintf("%s %s | EV %+.1f%% | %.2fu",
			r.Selection.MarketType, r.Selection.Quote.Label(), r.EV.EV*100, r.Stake.Units)))
	}
	if slate.Partial {
		b.WriteString("\n⚠️ _partial run_")
	}
	return b.String()
}

// FormatSettlement renders a settled bet as MarkdownV2.
func FormatSettlement(bet *types.BetRecord, bankroll *types.BankrollState) string {
	icon := "➖"
	switch bet.State {
	case types.StateSettledWin:
		icon = "✅"
	case types.StateSettledLoss:
		icon = "❌"
	}

	var realized float64
	if bet.RealizedUnits != nil {
		realized = *bet.RealizedUnits
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s*\n", icon, escapeMarkdownV2(bet.Recommendation.Game.Matchup()))
	fmt.Fprintf(&b, "%s\n", escapeMarkdownV2(fmt.Sprintf("%s %s | %s %+.2fu",
		bet.Recommendation.Selection.MarketType, bet.Recommendation.Selection.Quote.Label(), bet.State, realized)))
	if bankroll != nil {
		fmt.Fprintf(&b, "💰 %s", escapeMarkdownV2(fmt.Sprintf("Balance $%.2f (ROI %+.1f%%)", bankroll.Balance, bankroll.ROI*100)))
	}
	return b.String()
}

// escapeMarkdownV2 escapes the characters Telegram reserves in MarkdownV2.
func escapeMarkdownV2(s string) string {
	const special = "_*[]()~`>#+-=|{}.!\\"
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
