package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pion/logging"

	"snake-duel/auth"
	"snake-duel/clock"
	"snake-duel/config"
	"snake-duel/constants"
	"snake-duel/engine"
	"snake-duel/game"
	"snake-duel/handlers"
	"snake-duel/models"
	"snake-duel/webrtc"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	simulate := flag.Int("simulate", 0, "run a headless AI vs AI match for N ticks and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lf := cfg.Server.LoggerFactory()

	if *simulate > 0 {
		if err := runSimulation(cfg.Match, *simulate, lf.NewLogger("engine")); err != nil {
			log.Fatalf("simulate: %v", err)
		}
		return
	}

	gameManager := game.NewGameManager(cfg.Match, lf)
	defer gameManager.Shutdown()
	webrtcManager := webrtc.NewManager(cfg.Server.ICEServers, lf)
	gameManager.SetWebRTCManager(webrtcManager)
	authenticator := auth.NewAuthenticator(cfg.Server.JWTSecret)

	router := handlers.NewRouter(gameManager, webrtcManager, authenticator, lf)

	log.Printf("Server starting on port %s", cfg.Server.Port)
	log.Printf("WebSocket endpoint: /ws (encoding=json|msgpack)")
	log.Printf("HTTP endpoints: /webrtc/offer, /game/snapshot")
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, router))
}

// runSimulation plays two AI controllers against each other on a mock clock
// advanced one tick interval per tick.
func runSimulation(cfg config.Match, ticks int, logger logging.LeveledLogger) error {
	clk := clock.NewMock(time.Now())
	eng := engine.New("simulation", engine.Options{
		Match:  cfg,
		Clock:  clk,
		Seed:   time.Now().UnixNano(),
		Logger: logger,
	})
	err := eng.Initialize(models.ModeAITraining,
		engine.Identity{ID: "ai-1", Name: constants.AI_PLAYER_NAME + " 1", IsAI: true},
		engine.Identity{ID: "ai-2", Name: constants.AI_PLAYER_NAME + " 2", IsAI: true},
	)
	if err != nil {
		return err
	}

	for i := 0; i < ticks; i++ {
		clk.Advance(cfg.TickRate)
		if err := eng.Tick(); err != nil {
			return err
		}
		snap, err := eng.Snapshot()
		if err != nil {
			return err
		}
		fmt.Println(summarize(snap))
		if snap.IsGameOver {
			winner := "draw"
			if snap.WinnerID != nil {
				winner = *snap.WinnerID
			}
			logger.Infof("match over after %d ticks: %s, winner %s", snap.Tick, snap.EndReason, winner)
			return nil
		}
	}
	return nil
}

func summarize(s models.Snapshot) string {
	line := fmt.Sprintf("tick=%d remaining=%ds collectibles=%d", s.Tick, s.RemainingSeconds, len(s.Collectibles))
	for _, p := range []*models.PlayerSnapshot{s.Player1, s.Player2} {
		if p == nil {
			continue
		}
		line += fmt.Sprintf(" | %s len=%d lives=%d score=%d", p.Name, len(p.Snake.Body), p.Lives, p.Score)
		if p.IsRespawning {
			line += " (respawning)"
		}
	}
	for _, m := range s.Messages {
		line += fmt.Sprintf(" [%s: %s]", m.PlayerID, m.Text)
	}
	return line
}
