package bot

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"verify-bot/config"
	"verify-bot/review"
)

var c *cron.Cron

// startScheduler starts the cron jobs: an hourly sweep that purges
// manual-review entries whose subject has left the guild. Entries are
// normally purged by the member-remove handler; the sweep catches
// departures missed while the gateway was down.
func startScheduler(reviews *review.Coordinator) {
	logrus.Info("initializing scheduler")
	c = cron.New()
	_, err := c.AddFunc("@hourly", func() {
		logrus.Info("running hourly review-queue sweep")
		for guildID := range config.Guilds() {
			reviews.SweepOrphans(guildID)
		}
	})
	if err != nil {
		logrus.Fatalf("could not set up cron job: %v", err)
	}
	c.Start()
	logrus.Info("review-queue sweep scheduled hourly")
}

// stopScheduler stops the cron jobs.
func stopScheduler() {
	if c != nil {
		c.Stop()
		logrus.Info("scheduler stopped")
	}
}
