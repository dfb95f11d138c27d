package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"endpoint.GO/config"
	"endpoint.GO/model/schema"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the registry tables and install the version counter triggers",
	RunE: func(cmd *cobra.Command, args []string) error {
		mysql := config.GetEnv("DB_DRIVER", "mysql") == "mysql"
		if migrateDown {
			if !mysql {
				return fmt.Errorf("migrate --down is only supported on mysql")
			}
			if err := schema.DownMySQL(config.MySQLDSN()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Trigger migrations rolled back")
			return nil
		}
		db, err := connectDB()
		if err != nil {
			return err
		}
		if err := schema.Migrate(db, config.MySQLDSN()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema up to date")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back the mysql trigger migrations")
	rootCmd.AddCommand(migrateCmd)
}
