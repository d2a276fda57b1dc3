package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newInitDBCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the database schema (safe to repeat)",
		Args:  cobra.NoArgs,
		// Opening the session already ensures the schema.
		RunE: runE(v, func(s *session, cmd *cobra.Command) error {
			s.log.Info("database schema ready")
			fmt.Fprintln(cmd.OutOrStdout(), "Database schema initialized.")
			return nil
		}),
	}
}
