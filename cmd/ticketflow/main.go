package main

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/analysis"
	"github.com/spec-kit/ticketflow/internal/bulkimport"
	"github.com/spec-kit/ticketflow/internal/config"
	"github.com/spec-kit/ticketflow/internal/events"
	"github.com/spec-kit/ticketflow/internal/fallback"
	"github.com/spec-kit/ticketflow/internal/observability"
	"github.com/spec-kit/ticketflow/internal/session"
	"github.com/spec-kit/ticketflow/internal/store"
	"github.com/spec-kit/ticketflow/internal/transport"
	"github.com/spec-kit/ticketflow/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewFileLogger(cfg.Logger, "ticketflow.log")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventDegradation, func(_ context.Context, event events.Event) error {
		logger.Warn("degradation recorded", zap.Any("payload", event.Payload))
		return nil
	})

	metrics := observability.NewMetrics()
	client := transport.New(cfg.API, logger, metrics)
	sess := session.FromConfig(cfg.Session, cfg.API.AuthToken)
	if sess.Token != "" {
		client.SetToken(sess.Token)
	}

	ticketStore := store.New(dispatcher)
	orchestrator := analysis.New(client, logger, dispatcher)
	pipeline := bulkimport.New(client, logger)
	policy := fallback.New(logger, dispatcher, metrics)

	model := tui.NewModel(tui.Deps{
		Store:        ticketStore,
		Orchestrator: orchestrator,
		Pipeline:     pipeline,
		Client:       client,
		Policy:       policy,
		Session:      sess,
		Logger:       logger,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		logger.Fatal("program exited", zap.Error(err))
	}
}
