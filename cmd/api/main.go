// Package main is the entry point of the forum backend API server.
//
// With -remove-old-ips it runs a single IP retention sweep and exits, so the
// sweep can also be driven by an external scheduler.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/config"
	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/server"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// Version information is set during build time through linker flags.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// init loads environment variables from a .env file if present.
func init() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found or couldn't be loaded")
	}
}

func main() {
	var (
		configPath   string
		showVersion  bool
		removeOldIPs bool
	)

	flag.StringVar(&configPath, "config", "./configs/config.yaml", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&removeOldIPs, "remove-old-ips", false, "Run the IP retention sweep once and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("Forum API Server\nVersion: %s\nCommit: %s\nBuild Date: %s\n", version, commit, buildDate)
		os.Exit(0)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if version != "dev" {
		cfg.App.Version = version
	}

	utils.InitLogger(cfg)
	utils.InitValidator()

	log.Info().
		Str("version", cfg.App.Version).
		Str("environment", cfg.App.Environment).
		Msg("Starting Forum API Server")

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	if removeOldIPs {
		err := srv.RunJob(context.Background(), constants.JobRemoveOldIPs)
		srv.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("IP retention sweep failed")
		}
		return
	}

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
