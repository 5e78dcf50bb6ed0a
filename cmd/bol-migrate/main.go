package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"github.com/freightdocs/bol-extractor/internal/config"
	"github.com/freightdocs/bol-extractor/internal/repository"
)

func usage() {
	fmt.Println("Usage: bol-migrate [flags] [up|down|steps N|version]")
	flag.PrintDefaults()
}

func main() {
	cfgFile := flag.String("config", "", "config file path")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !cfg.DB.Enabled() {
		log.Fatal("no database configured: set BOL_DB_DSN")
	}

	conn, err := repository.Connect(repository.Config{
		Driver:  cfg.DB.Driver,
		DSN:     cfg.DB.DSN,
		MaxOpen: cfg.DB.MaxOpen,
		MaxIdle: cfg.DB.MaxIdle,
	}, nil)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	m, err := repository.NewMigrator(conn)
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	switch cmd := flag.Arg(0); cmd {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migration up failed: %v", err)
		}
		log.Println("migrations applied successfully")

	case "down":
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migration down failed: %v", err)
		}
		log.Println("migrations reverted successfully")

	case "steps":
		if flag.NArg() < 2 {
			log.Fatal("steps requires a number argument")
		}
		n, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			log.Fatalf("invalid steps argument: %v", err)
		}
		if err := m.Steps(n); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migration steps failed: %v", err)
		}
		log.Printf("applied %d migration steps", n)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("failed to get version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}
