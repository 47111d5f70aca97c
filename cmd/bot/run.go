package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ClickerPilot/internal/collector"
	"ClickerPilot/internal/notifier"
	"ClickerPilot/internal/recorder"
	"ClickerPilot/internal/scheduler"
	"ClickerPilot/internal/state"
)

func runBot(cmd *cobra.Command, args []string) error {
	log.Println("[INFO] ClickerPilot starting...")

	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	keepAlive, err := cfg.KeepAliveSchedule()
	if err != nil {
		return err
	}

	store, err := state.Open(cfg.State.File)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	log.Printf("[INFO] state file: %s", cfg.State.File)

	client := collector.NewClickerClient(cfg.API.BaseURL, cfg.API.AuthToken, cfg.API.UserAgent, cfg.Proxy, cfg.API.Timeout)
	log.Printf("[INFO] api client: %s (%s)", client.Name(), cfg.API.BaseURL)
	col := collector.NewCollector(client, store)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init notifier
	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	}

	ctx, cancel := signalContext()
	defer cancel()

	bot := scheduler.NewBot(col, newSelector(cfg), rec, n, keepAlive, scheduler.RealClock{})
	bot.JitterMin = cfg.Schedule.JitterMin
	bot.JitterMax = cfg.Schedule.JitterMax
	bot.TopN = cfg.Strategy.TopN
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		bot.Queue.SetCountdown(terminalCountdown())
	}

	if tn != nil {
		go tn.StartPolling(ctx, bot.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	log.Println("[INFO] ClickerPilot is running. Press Ctrl+C to stop.")
	err = bot.Run(ctx)
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		fmt.Println()
		log.Println("[INFO] shutdown signal received, ClickerPilot stopped")
		return nil
	}
	return err
}

// terminalCountdown redraws a single status line while waiting.
func terminalCountdown() scheduler.Countdown {
	waitColor := color.New(color.FgYellow)
	doneColor := color.New(color.FgGreen)
	return func(remaining, total time.Duration, label string) {
		if remaining > 0 {
			waitColor.Printf("\rWaiting %s / %s: %s\033[K",
				notifier.FormatDuration(remaining), notifier.FormatDuration(total), label)
			return
		}
		doneColor.Printf("\rWaited %s: %s\033[K\n", notifier.FormatDuration(total), label)
	}
}
