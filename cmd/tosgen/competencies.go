package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-tos/internal/app"
)

func newCompetenciesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "competencies",
		Short: "List MELCs in the bank (optionally filtered by subject, grade or quarter)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			grade, _ := cmd.Flags().GetString("grade")
			quarter, _ := cmd.Flags().GetString("quarter")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			src, db, err := app.OpenSource(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			subjects := []string{subject}
			if subject == "" {
				if subjects, err = src.Subjects(ctx); err != nil {
					return fmt.Errorf("list subjects: %w", err)
				}
			}

			total := 0
			for _, s := range subjects {
				grades := []string{grade}
				if grade == "" {
					if grades, err = src.Grades(ctx, s); err != nil {
						return fmt.Errorf("list grades: %w", err)
					}
				}
				for _, g := range grades {
					quarters := []string{quarter}
					if quarter == "" {
						if quarters, err = src.Quarters(ctx, s, g); err != nil {
							return fmt.Errorf("list quarters: %w", err)
						}
					}
					for _, q := range quarters {
						comps, err := src.Competencies(ctx, s, g, q)
						if err != nil {
							return fmt.Errorf("list competencies: %w", err)
						}
						if len(comps) == 0 {
							continue
						}
						fmt.Fprintf(w, "%s / %s / %s\n", s, g, q)
						for _, c := range comps {
							fmt.Fprintf(w, "  %-20s  %s\n", c.Code, c.Description)
						}
						total += len(comps)
					}
				}
			}

			fmt.Fprintf(w, "\n%d competencies\n", total)
			return nil
		},
	}

	cmd.Flags().String("subject", "", "Filter by subject")
	cmd.Flags().String("grade", "", "Filter by grade level")
	cmd.Flags().String("quarter", "", "Filter by quarter")
	return cmd
}
