package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"verify-bot/bot"
	"verify-bot/config"
	"verify-bot/database"
	"verify-bot/handlers"
	"verify-bot/metrics"
	"verify-bot/realmeye"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	config.LoadConfig()

	viper.SetDefault("database.path", "data/verify.db")
	viper.SetDefault("realmeye.base_url", "https://api.realmeye.net")
	viper.SetDefault("realmeye.timeout", "10s")
	viper.SetDefault("metrics.port", 2112)

	store, err := database.Open(viper.GetString("database.path"))
	if err != nil {
		logrus.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	profiles := realmeye.NewClient(
		viper.GetString("realmeye.base_url"),
		viper.GetDuration("realmeye.timeout"),
	)

	metricsServer := metrics.NewServer(viper.GetInt("metrics.port"))
	metricsServer.Start()

	b, err := bot.NewBot()
	if err != nil {
		logrus.Fatalf("failed to create bot: %v", err)
	}

	env := handlers.NewEnv(b.Session, store, profiles)
	handlers.Register(b.Session, env)

	if err := b.Start(env.Reviews); err != nil {
		logrus.Fatalf("failed to start bot: %v", err)
	}
	handlers.PublishEntryPoints(b.Session)

	// Wait here until CTRL-C or other term signal is received.
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logrus.Info("shutting down")
	b.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(ctx); err != nil {
		logrus.Errorf("metrics shutdown: %v", err)
	}
}
