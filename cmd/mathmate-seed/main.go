package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"mathmate/internal/auth"
	"mathmate/internal/classroom"
	"mathmate/internal/config"
	"mathmate/internal/logging"
	"mathmate/internal/opentdb"
	"mathmate/internal/quiz"
	"mathmate/internal/report"
	"mathmate/internal/seed"
	"mathmate/internal/sqlstore"
	"mathmate/internal/student"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("mathmate-seed", "info").WithError(err).Fatal("load config")
	}

	dbDriver := flag.String("db-driver", cfg.DBDriver, "database driver (sqlite3 or postgres)")
	dbPath := flag.String("db", cfg.DBPath, "sqlite database file")
	name := flag.String("name", "Demo Teacher", "teacher name")
	email := flag.String("email", "teacher@mathmate.local", "teacher email")
	password := flag.String("password", "mathmate", "teacher password")
	trivia := flag.Int("trivia", 0, "add a quiz with this many Open Trivia DB questions (max 50)")
	flag.Parse()

	cfg.DBDriver = *dbDriver
	cfg.DBPath = *dbPath

	log := logging.New("mathmate-seed", cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DSN(), cfg.QueryTimeout)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer store.Close()

	services := seed.Services{
		Auth:     auth.NewService(store, store, auth.NewTokenIssuer(cfg.JWTSecret, time.Hour), cfg.SessionTTL),
		Classes:  classroom.NewService(store),
		Quizzes:  quiz.NewService(store),
		Students: student.NewService(store),
		Reports:  report.NewService(store),
	}

	result, err := seed.Run(ctx, services, seed.Options{
		TeacherName:     *name,
		TeacherEmail:    *email,
		TeacherPassword: *password,
		TriviaCount:     *trivia,
		Trivia:          opentdb.NewClient(nil).WithCategory(opentdb.CategoryMathematics),
		Logger:          log,
	})
	if err != nil {
		log.WithError(err).Error("seed failed")
		store.Close()
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"teacher_id": result.TeacherID,
		"class_ids":  result.ClassIDs,
		"quiz_ids":   result.QuizIDs,
	}).Info("demo data ready")
}
