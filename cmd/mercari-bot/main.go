package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/takumidev/mercari-price-bot/internal/config"
	"github.com/takumidev/mercari-price-bot/internal/mercari"
	"github.com/takumidev/mercari-price-bot/internal/notify"
	"github.com/takumidev/mercari-price-bot/internal/progress"
)

const summaryTitle = "Mercari price change"

var (
	configPath   string
	notifyLog    bool
	debugMode    bool
	resetProfile bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "mercari-bot",
		Short:        "Automatically lowers the prices of your Mercari listings",
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "config file path")
	rootCmd.Flags().BoolVarP(&notifyLog, "notify", "l", false, "send the run log via chat/mail")
	rootCmd.Flags().BoolVarP(&debugMode, "debug", "D", false, "dry run: decide but do not change prices")
	rootCmd.Flags().BoolVarP(&resetProfile, "reset-profile", "R", false, "clear browser profile data on launch failure and retry invalid sessions")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}

	os.Exit(exitCode)
}

// exitCode is the number of failed profiles; 0 means full success.
var exitCode int

func run(_ *cobra.Command, _ []string) error {
	// Secrets referenced as ${VAR} in the config file may come from a
	// local .env; its absence is fine.
	_ = godotenv.Load()

	// The whole run log is kept in memory too, so -l can ship it as
	// the summary notification afterwards.
	logBuf := &bytes.Buffer{}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(io.MultiWriter(os.Stdout, logBuf), &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	cfg.LogSummary(logger)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Telegram != nil {
		tg, err := notify.NewTelegram(cfg.Telegram)
		if err != nil {
			logger.Error("failed to set up telegram", "error", err)
			return err
		}
		notifier = &notify.Limited{
			Inner:   tg,
			History: notify.NewHistory(cfg.Telegram.ErrorInterval()),
		}
	}

	observer := progress.NewTerminal(os.Stdout)
	defer observer.Finish()

	runner := mercari.NewRunner(cfg, debugMode, resetProfile, notifier, observer)

	logger.Info("start", "debug_mode", debugMode)
	ret, runErr := runner.Run()
	logger.Info("finish", "result", ret)

	if notifyLog {
		body := logBuf.String()
		if err := notifier.Info(summaryTitle, body); err != nil {
			logger.Warn("failed to send summary notification", "error", err)
		}
		if cfg.Mail != nil {
			if err := notify.NewMail(cfg.Mail).Send(summaryTitle, body); err != nil {
				logger.Warn("failed to send summary mail", "error", err)
			}
		}
	}

	if runErr != nil {
		logger.Error("run aborted", "error", runErr)
		return runErr
	}

	if ret < 0 {
		exitCode = -ret
	}
	return nil
}
