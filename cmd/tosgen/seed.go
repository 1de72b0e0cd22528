package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-tos/internal/curriculum"
	"github.com/p-n-ai/pai-tos/internal/platform/database"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import a YAML MELC bank into PostgreSQL",
		Long: `Create the melcs table if needed and upsert every competency from a YAML
bank. The bank is --dir, else TOS_CURRICULUM_PATH, else the bank built into
tosgen. The database is TOS_DATABASE_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("TOS_DATABASE_URL is required")
			}

			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.CurriculumPath
			}
			var loader *curriculum.Loader
			if dir != "" {
				loader, err = curriculum.NewLoader(dir)
			} else {
				loader, err = curriculum.Default()
			}
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := database.New(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer db.Close()

			src, err := curriculum.NewPostgresSource(db.Pool)
			if err != nil {
				return err
			}
			if err := src.Migrate(ctx); err != nil {
				return err
			}
			n, err := src.Import(ctx, loader.All())
			if err != nil {
				return err
			}

			slog.Info("MELC bank seeded", "competencies", n)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d competencies\n", n)
			return nil
		},
	}

	cmd.Flags().String("dir", "", "Directory of YAML bank files")
	return cmd
}
