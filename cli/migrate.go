package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gobarber/database"
	notificationRepo "gobarber/database/repository/notification"
)

func newMigrateCmd(env *environment) *cobra.Command {
	var withMongo bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(env)
			defer a.Close()

			if err := a.openSQL(); err != nil {
				return err
			}
			if err := database.Migrate(a.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			env.logger.Info("Relational schema is up to date", zap.String("driver", env.cfg.DBDriver))

			if !withMongo {
				return nil
			}
			if err := a.openMongo(cmd.Context()); err != nil {
				return err
			}
			// Building the repository creates its indexes.
			if _, err := notificationRepo.NewMongoNotificationRepo(cmd.Context(), a.mongo.Database(env.cfg.MongoDatabase)); err != nil {
				return fmt.Errorf("notification indexes: %w", err)
			}
			env.logger.Info("Notification indexes are up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&withMongo, "mongo", true, "also create the notification collection indexes")
	return cmd
}
