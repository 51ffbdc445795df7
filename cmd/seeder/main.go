package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hellotonatural/jeeves-backend/internal/config"
	"github.com/hellotonatural/jeeves-backend/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, relying on OS environment variables")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.WithField("service", "jeeves-seeder")

	cfg := config.Load()
	conn, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer conn.Close()

	if err := db.Migrate(conn, log); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}

	seedFiles := []string{
		"seed/campaigns.sql",
		"seed/influencers.sql",
	}

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			log.WithError(err).WithField("file", file).Fatal("failed to read seed file")
		}
		if _, err := conn.Exec(string(content)); err != nil {
			log.WithError(err).WithField("file", file).Fatal("failed to execute seed file")
		}
		log.WithField("file", file).Info("seeded")
	}

	log.Info("database seeding completed")
}
