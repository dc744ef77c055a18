package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/notification-orchestrator/internal/adapters/memory"
	"github.com/zatekoja/notification-orchestrator/internal/api/validation"
	"github.com/zatekoja/notification-orchestrator/internal/application/services"
	"github.com/zatekoja/notification-orchestrator/internal/bootstrap"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	"github.com/zatekoja/notification-orchestrator/internal/domain/repositories"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/observability"
	"github.com/zatekoja/notification-orchestrator/pkg/config"
)

func main() {
	var eventPath string
	var preferencesPath string

	flag.StringVar(&eventPath, "event", "-", "Event JSON file, - for stdin")
	flag.StringVar(&preferencesPath, "preferences", "", "Preferences JSON for the event's user; evaluates offline against it instead of the configured store")
	flag.Parse()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	// logs go to stderr so stdout carries only the decision
	observability.InitLoggerWithWriter(os.Stderr, "notification-evaluate", cfg.Log.Env, cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eventJSON, err := readInput(eventPath, os.Stdin)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read event")
	}

	var repo repositories.PreferenceRepository
	var prefsJSON []byte
	if preferencesPath != "" {
		if prefsJSON, err = readInput(preferencesPath, os.Stdin); err != nil {
			log.Fatal().Err(err).Msg("Failed to read preferences")
		}
		repo = memory.NewPreferenceStore()
	} else {
		store, err := bootstrap.OpenStore(ctx, cfg, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open preference store")
		}
		defer store.Close()
		repo = store.Repository
	}

	decision, err := evaluate(ctx, repo, validation.New(cfg.Notify.Channels), eventJSON, prefsJSON)
	if err != nil {
		log.Error().Err(err).Msg("Evaluation failed")
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(decision); err != nil {
		log.Fatal().Err(err).Msg("Failed to write decision")
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// evaluate validates eventJSON the way POST /events does and decides it
// against repo. A non-empty prefsJSON is stored for the event's user first.
func evaluate(ctx context.Context, repo repositories.PreferenceRepository, validator *validation.Validator, eventJSON, prefsJSON []byte) (*entities.Decision, error) {
	var req validation.EventRequest
	if err := json.Unmarshal(eventJSON, &req); err != nil {
		return nil, fmt.Errorf("invalid event JSON: %w", err)
	}
	if err := validator.ValidateEvent(&req); err != nil {
		return nil, err
	}
	event, err := req.ToEntity()
	if err != nil {
		return nil, err
	}

	if len(prefsJSON) > 0 {
		var prefsReq validation.PreferencesRequest
		if err := json.Unmarshal(prefsJSON, &prefsReq); err != nil {
			return nil, fmt.Errorf("invalid preferences JSON: %w", err)
		}
		if err := validator.ValidatePreferences(&prefsReq); err != nil {
			return nil, err
		}
		record, err := prefsReq.ToRecord(event.UserID)
		if err != nil {
			return nil, err
		}
		if _, err := services.NewPreferenceService(repo, nil).Set(ctx, record); err != nil {
			return nil, err
		}
	}

	return services.NewDecisionService(repo, nil).Evaluate(ctx, event)
}
