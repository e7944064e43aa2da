package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/unravel-games/code2027-server-go/internal/config"
	"github.com/unravel-games/code2027-server-go/internal/data"
	"github.com/unravel-games/code2027-server-go/internal/game"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting simulation",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	provider, err := data.LoadDataset(cfg.Game.DataDir, logger.Named("data"))
	if err != nil {
		logger.Fatal("failed to load game data", zap.Error(err))
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	engine := game.NewEngine(provider, game.Config{
		StartingSpace: cfg.Game.StartingSpace,
		StartingMoney: cfg.Game.StartingMoney,
		StartingTime:  cfg.Game.StartingTime,
		CardLimit:     cfg.Game.CardLimit,
		Seed:          seed,
	}, logger.Named("engine"))

	playerIDs := make([]string, 0, cfg.Simulation.Players)
	for i := 0; i < cfg.Simulation.Players; i++ {
		id, err := engine.AddPlayer(fmt.Sprintf("Player %d", i+1), "", "")
		if err != nil {
			logger.Fatal("failed to add player", zap.Error(err))
		}
		playerIDs = append(playerIDs, id)
	}
	if err := engine.StartGame(); err != nil {
		logger.Fatal("failed to start game", zap.Error(err))
	}

	// The driving loop: one serial turn at a time, resolving every
	// choice the engine raises with a random selection.
	store := engine.Store()
	for turn := 0; turn < cfg.Simulation.MaxTurns; turn++ {
		gs := store.GetState()
		if gs.IsGameOver {
			break
		}
		current := gs.CurrentPlayerID

		result := engine.TakeTurn(current)
		if result.Err != nil {
			logger.Error("turn failed", zap.String("player_id", current), zap.Error(result.Err))
			break
		}
		resolveChoices(engine, rng, logger)

		for i := 0; i < manualActionCount(engine, current); i++ {
			if res := engine.PerformManualAction(current, i); res.Err != nil {
				logger.Warn("manual action failed", zap.Error(res.Err))
			}
			resolveChoices(engine, rng, logger)
		}

		if res := engine.EndTurn(current); res.Err != nil {
			logger.Error("end turn failed", zap.String("player_id", current), zap.Error(res.Err))
			break
		}
	}

	final := store.GetState()
	if final.IsGameOver {
		winner := final.Player(final.Winner)
		name := final.Winner
		if winner != nil {
			name = winner.Name
		}
		logger.Info("simulation finished",
			zap.String("winner", name),
			zap.Int("turns", final.Turn),
		)
	} else {
		logger.Info("simulation stopped before a winner emerged",
			zap.Int("turns", final.Turn),
			zap.Int("max_turns", cfg.Simulation.MaxTurns),
		)
	}

	for _, id := range playerIDs {
		p := final.Player(id)
		if p == nil {
			continue
		}
		logger.Info("final player state",
			zap.String("name", p.Name),
			zap.String("space", p.CurrentSpace),
			zap.Int("money", p.Money),
			zap.Int("time_spent", p.TimeSpent),
			zap.Int("project_scope", p.ProjectScope),
		)
	}
}

// resolveChoices answers every outstanding choice with a random option
// until the engine stops raising them.
func resolveChoices(engine *game.Engine, rng *rand.Rand, logger *zap.Logger) {
	for {
		ch := engine.Store().GetState().AwaitingChoice
		if ch == nil {
			return
		}
		option := ch.Options[rng.Intn(len(ch.Options))]
		if err := engine.ResolveChoice(ch.ID, option.ID); err != nil {
			logger.Error("failed to resolve choice", zap.String("choice_id", ch.ID), zap.Error(err))
			return
		}
	}
}

func manualActionCount(engine *game.Engine, playerID string) int {
	rows, err := engine.ManualActions(playerID)
	if err != nil {
		return 0
	}
	return len(rows)
}

// initLogger initializes the zap logger based on configuration.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
