package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parley-engine/parley/internal/config"
	"github.com/parley-engine/parley/internal/logger"
	"github.com/parley-engine/parley/internal/services"
	"github.com/parley-engine/parley/pkg/scenario"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg)

	scenarios, err := scenario.LoadDir(cfg.DataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load scenarios from %s: %v\n", cfg.DataPath, err)
		os.Exit(1)
	}

	provider, err := services.NewProvider(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize LLM provider: %v\n", err)
		os.Exit(1)
	}

	// Ollama pulls the model on first use; other providers are ready as-is.
	if init, ok := provider.(services.ModelInitializer); ok {
		fmt.Printf("Preparing model %q...\n", cfg.ChatModel)
		if err := init.InitModel(context.Background(), cfg.ChatModel); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize model: %v\n", err)
			os.Exit(1)
		}
	}

	client := services.NewClient(provider, cfg, log)
	store := services.NewSessionStore(cfg, log)
	defer func() {
		_ = store.Close()
	}()

	p := tea.NewProgram(NewConsoleUI(cfg, log, client, store, scenarios),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
