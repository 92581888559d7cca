package main

import (
	"context"
	"flag"
	"log"

	"royal-villa/internal/db"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// migrateConfig evita exigir el secreto JWT solo para migrar.
type migrateConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
}

// Uso: migrate [up|down|status|redo|version] [args...]
func main() {
	flag.Parse()
	command := "up"
	var args []string
	if flag.NArg() > 0 {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}
	var cfg migrateConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := db.RunMigrations(context.Background(), cfg.DatabaseURL, command, args...); err != nil {
		log.Fatalf("migrate %s: %v", command, err)
	}
}
