package cron

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// NewScheduler builds a scheduler holding every registered job. Overlapping runs of a job are
// skipped and panics are recovered, both logged through logrus.
func NewScheduler() (*cron.Cron, error) {
	logger := cron.PrintfLogger(logrus.StandardLogger())
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	for name, j := range Jobs() {
		if j.Schedule == Manual {
			continue
		}
		run := j.Run
		if _, err := c.AddFunc(j.Schedule, func() { run() }); err != nil {
			return nil, fmt.Errorf("cron: register job %s: %w", name, err)
		}
		logrus.WithFields(logrus.Fields{"job": name, "schedule": j.Schedule}).Debug("cron: job scheduled")
	}
	return c, nil
}

// StartCron starts the scheduler built by NewScheduler.
func StartCron() (*cron.Cron, error) {
	c, err := NewScheduler()
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
