// migrate runs DB migrations from embedded SQL; use with go run ./cmd/migrate.
package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"org-membership-service/internal/config"
	"org-membership-service/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		logrus.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		logrus.Fatalf("migrate: %v", err)
	}
	logrus.Infof("migrations applied (%s)", *direction)
}
