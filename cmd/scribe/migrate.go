package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/scribe/bootstrap"
	"github.com/kbukum/scribe/database"
	"github.com/kbukum/scribe/database/migration"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/migrations"
)

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	var (
		down  bool
		steps int
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			cfg.Database.AutoMigrate = false

			app, err := bootstrap.NewApp(cfg)
			if err != nil {
				return err
			}
			db := database.NewComponent(cfg.Database, app.Logger)
			if err := app.RegisterComponent(db); err != nil {
				return err
			}
			return app.RunTask(cmd.Context(), func(context.Context) error {
				gdb := db.DB().GormDB
				var err error
				switch {
				case steps != 0:
					err = migration.MigrateSteps(gdb, migrations.FS, ".", steps)
				case down:
					err = migration.MigrateDown(gdb, migrations.FS, ".")
				default:
					err = migration.MigrateUp(gdb, migrations.FS, ".")
				}
				if err != nil {
					return err
				}
				version, dirty, err := migration.Version(gdb, migrations.FS, ".")
				if err != nil {
					return err
				}
				app.Logger.Info("Migrations applied", logger.Fields("version", version, "dirty", dirty))
				fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back every migration")
	cmd.Flags().IntVar(&steps, "steps", 0, "apply n migrations, negative to roll back")
	return cmd
}
