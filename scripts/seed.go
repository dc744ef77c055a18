package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/notification-orchestrator/internal/application/services"
	"github.com/zatekoja/notification-orchestrator/internal/bootstrap"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/observability"
	"github.com/zatekoja/notification-orchestrator/pkg/config"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

func mustClock(value string) entities.ClockTime {
	clock, err := entities.ParseClockTime(value)
	if err != nil {
		log.Fatal().Err(err).Str("value", value).Msg("Invalid seed clock time")
	}
	return clock
}

func days(names ...string) entities.Weekdays {
	set, _ := entities.ParseWeekdays(names)
	return set
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("notification-seed", cfg.Log.Env, cfg.Log.Level)

	ctx := context.Background()

	store, err := bootstrap.OpenStore(ctx, cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open preference store")
	}
	defer store.Close()

	preferenceService := services.NewPreferenceService(store.Repository, nil)

	records := []*entities.PreferencesRecord{
		entities.NewPreferencesRecord("usr_night_owl", map[string]entities.EventTypePreference{
			"item_shipped":      {Enabled: true, Channels: []entities.Channel{entities.ChannelEmail, entities.ChannelPush}},
			"invoice_generated": {Enabled: true, Channels: []entities.Channel{entities.ChannelEmail}},
		}, []entities.DndWindow{
			entities.TimeRangeWindow(days("Monday", "Tuesday", "Wednesday", "Thursday", "Friday"), mustClock("22:00"), mustClock("07:00")),
		}),
		entities.NewPreferencesRecord("usr_weekend_off", map[string]entities.EventTypePreference{
			"item_shipped": {Enabled: true, Channels: []entities.Channel{entities.ChannelSMS}},
			"newsletter":   {Enabled: false, Channels: []entities.Channel{entities.ChannelEmail}},
		}, []entities.DndWindow{
			entities.FullDayWindow(days("Saturday", "Sunday")),
		}),
		entities.NewPreferencesRecord("usr_no_channels", map[string]entities.EventTypePreference{
			"item_shipped": {Enabled: true, Channels: []entities.Channel{}},
		}, nil),
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, deleting seed users before seeding")
		for _, record := range records {
			if err := preferenceService.Delete(ctx, record.UserID); err != nil && !apperrors.IsNotFound(err) {
				log.Fatal().Err(err).Str("user_id", record.UserID).Msg("Failed to reset seed user")
			}
		}
	}

	for _, record := range records {
		if _, err := preferenceService.Set(ctx, record); err != nil {
			log.Error().Err(err).Str("user_id", record.UserID).Msg("Failed to seed preferences")
			continue
		}
		log.Info().Str("user_id", record.UserID).Int("event_types", len(record.Preferences)).Msg("Seeded preferences")
	}
}
