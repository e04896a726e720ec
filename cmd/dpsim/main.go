// Package main provides the dpsim binary: it loads the configuration and the
// weapon catalogs, runs one simulation per requested weapon, and prints each
// summary to stdout.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/config"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/catalog"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/dice"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/legend"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/game/sim"
	"github.com/synvanalt/adoh-dps-simulator-sub000/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/default.yaml", "path to configuration file")
	weaponsDir := flag.String("weapons-dir", "content/weapons", "path to base weapon YAML definitions directory")
	namedDir := flag.String("named-dir", "content/named", "path to named weapon YAML definitions directory")
	weaponID := flag.String("weapon", "", "single weapon ID to simulate; overrides the config weapon list")
	seed := flag.Int64("seed", 0, "random seed; 0 = non-deterministic")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	reg, err := catalog.Load(*weaponsDir, *namedDir)
	if err != nil {
		logger.Fatal("loading weapon catalogs", zap.Error(err))
	}

	var src dice.Source
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	} else {
		src = dice.NewCryptoSource()
	}
	if cfg.Logging.Level == "debug" {
		src = dice.NewLoggedSource(src, logger)
	}

	simulator := sim.New(reg, legend.DefaultRegistry(), src, logger)

	weapons := cfg.Weapons
	if *weaponID != "" {
		weapons = []string{*weaponID}
	}
	if len(weapons) == 0 {
		logger.Fatal("no weapons requested; set -weapon or the config weapons list")
	}

	failed := false
	for _, id := range weapons {
		res, err := simulator.Simulate(id, &cfg.Sim)
		if err != nil {
			logger.Error("simulation failed", zap.String("weapon", id), zap.Error(err))
			failed = true
			continue
		}
		fmt.Println(res.Summary)
	}

	logger.Info("done",
		zap.Int("weapons", len(weapons)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if failed {
		os.Exit(1)
	}
}
