// Command revenue-bot computes the revenue report for the current day,
// week, or month and delivers it to the configured notification sinks.
// It is meant to run from cron or a scheduler.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"

	"github.com/buanay/pos/internal/domain/report"
	"github.com/buanay/pos/internal/notify"
	"github.com/buanay/pos/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		period      string
		webhookURL  string
		botToken    string
		chatID      string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&period, "period", "day", "report period: day, week, or month")
	flag.StringVar(&webhookURL, "discord-webhook-url", "", "Discord webhook URL (or POS_NOTIFY_DISCORD_WEBHOOK_URL env)")
	flag.StringVar(&botToken, "telegram-bot-token", "", "Telegram bot token (or POS_NOTIFY_TELEGRAM_BOT_TOKEN env)")
	flag.StringVar(&chatID, "telegram-chat-id", "", "Telegram chat id (or POS_NOTIFY_TELEGRAM_CHAT_ID env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if webhookURL == "" {
		webhookURL = os.Getenv("POS_NOTIFY_DISCORD_WEBHOOK_URL")
	}
	if botToken == "" {
		botToken = os.Getenv("POS_NOTIFY_TELEGRAM_BOT_TOKEN")
	}
	if chatID == "" {
		chatID = os.Getenv("POS_NOTIFY_TELEGRAM_CHAT_ID")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, report.Period(period), webhookURL, botToken, chatID); err != nil {
		slog.Error("revenue report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL string, period report.Period, webhookURL, botToken, chatID string) error {
	var sinks []notify.Sink
	if webhookURL != "" {
		sinks = append(sinks, notify.NewDiscordSink(webhookURL))
	}
	if botToken != "" && chatID != "" {
		sinks = append(sinks, notify.NewTelegramSink(botToken, chatID))
	}
	if len(sinks) == 0 {
		return errors.New("no notification sink configured")
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	reports := report.NewService(postgres.NewOrderRepository(pool))
	rep, err := reports.Report(ctx, period, time.Now())
	if err != nil {
		return errors.Wrap(err, "compute report")
	}

	slog.Info("report computed",
		slog.String("period", string(period)),
		slog.Int64("total_revenue", rep.TotalRevenue),
		slog.Int("total_orders", rep.TotalOrders),
	)

	msg := notify.Message{Kind: notify.KindRevenueReport, Report: rep}
	var failed int
	for _, sink := range sinks {
		sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := sink.Send(sendCtx, msg)
		cancel()
		if err != nil {
			failed++
			slog.Error("sink delivery failed", slog.String("sink", sink.Name()), slog.String("error", err.Error()))
			continue
		}
		slog.Info("report delivered", slog.String("sink", sink.Name()))
	}
	if failed == len(sinks) {
		return fmt.Errorf("all %d sinks failed", failed)
	}
	return nil
}
