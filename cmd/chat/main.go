// Command chat runs the assistant as an interactive terminal session,
// in-process, without the HTTP server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/uxtriage/uxtriage/internal/agent"
	"github.com/uxtriage/uxtriage/internal/config"
	"github.com/uxtriage/uxtriage/internal/retrieval"
	"github.com/uxtriage/uxtriage/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.OpenAIAPIKey == "" {
		fmt.Fprintln(os.Stderr, "Missing OPENAI_API_KEY. Create a .env file or export it.")
		os.Exit(1)
	}

	// Log to stderr so answers on stdout stay clean.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.WarnLevel).
		With().
		Timestamp().
		Logger()

	ctx := context.Background()

	var issueStore store.IssueStore
	switch {
	case cfg.DatabaseURL != "":
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		issueStore = pg
	case cfg.SQLitePath != "":
		lite, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		issueStore = lite
	}
	if issueStore != nil {
		defer issueStore.Close()
	}

	retriever := retrieval.New(issueStore, logger, cfg.StoreTimeout)
	dispatcher := agent.NewToolset(retriever, logger)
	oracle := agent.NewOpenAIClient(agent.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OracleTimeout,
	}, logger)
	orchestrator := agent.NewOrchestrator(oracle, dispatcher, logger, agent.OrchestratorConfig{
		MaxIterations: cfg.MaxTurnIterations,
	})

	fmt.Println("uxtriage assistant (type 'exit' to quit)")
	fmt.Println("store enabled:", retriever.Enabled())
	fmt.Println(strings.Repeat("-", 60))

	state := &agent.State{}
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(input) {
		case "exit", "quit":
			return
		case "":
			fmt.Println("Please describe a UX issue (or 'exit' to quit).")
			continue
		}

		answer, err := orchestrator.RunTurn(ctx, state, input)
		if err != nil {
			fmt.Println("\nAgent: sorry, I could not complete that request. Please try again.")
			logger.Error().Err(err).Msg("turn failed")
			continue
		}

		fmt.Println("\nAgent:", answer)
	}
}
