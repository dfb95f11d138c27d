package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"endpoint.GO/cron"
	"endpoint.GO/cron/jobs"
)

var jobName string

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the cron scheduler or run a single job by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps()
		if err != nil {
			return err
		}
		jobs.Register(d.Cache, d.Routes)

		if jobName != "" {
			name := strings.ToLower(jobName)
			fmt.Fprintf(cmd.OutOrStdout(), "Running cron job: %s\n", name)
			if !cron.Run(name, args...) {
				return fmt.Errorf("unknown job: %s", jobName)
			}
			return nil
		}
		c, err := cron.StartCron()
		if err != nil {
			return err
		}
		logrus.WithField("jobs", len(c.Entries())).Info("cron: scheduler started, press Ctrl+C to exit")
		<-cmd.Context().Done()
		<-c.Stop().Done()
		return nil
	},
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	rootCmd.AddCommand(cronStartCmd)
}
