package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"bottle-spin/internal/client"
	"bottle-spin/internal/config"
	"bottle-spin/internal/logging"
	"bottle-spin/internal/session"

	"github.com/rs/zerolog/log"
)

// party-bot joins a game and keeps the bottle moving: whenever both
// seats are filled and it is the bot's turn, it spins.
func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal().Err(err).Msg("load client config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.ServerURL)

	gameID := cfg.GameID
	if gameID == "" {
		gameID, err = api.CreateGame(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("create game failed")
		}
		log.Info().Str("game_id", gameID).Msg("created game")
	}

	participantID := cfg.ParticipantID
	if participantID == "" {
		participantID = "bot-" + session.NewCode()
	}

	agent := client.NewAgent(api, gameID, participantID, cfg.DisplayName)
	agent.OnUpdate = func(g session.Session) {
		if g.Spinning || len(g.Participants) < session.MaxParticipants {
			return
		}
		if g.TurnIndex >= len(g.Participants) || g.Participants[g.TurnIndex].ID != participantID {
			return
		}
		_, err := api.Act(ctx, gameID, session.ActionRequest{
			ParticipantID: participantID,
			Action:        session.ActionSpin,
		})
		if err != nil && !errors.Is(err, session.ErrSpinPending) {
			log.Warn().Err(err).Msg("spin failed")
		}
	}

	agent.Start(ctx)
	log.Info().
		Str("server", cfg.ServerURL).
		Str("game_id", gameID).
		Str("participant_id", participantID).
		Msg("bot running, ctrl-c to leave")

	<-ctx.Done()
	agent.Stop()
}
