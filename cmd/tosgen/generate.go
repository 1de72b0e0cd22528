package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-tos/internal/app"
	"github.com/p-n-ai/pai-tos/internal/assessment"
	"github.com/p-n-ai/pai-tos/internal/curriculum"
	"github.com/p-n-ai/pai-tos/internal/document"
	"github.com/p-n-ai/pai-tos/internal/platform/config"
	"github.com/p-n-ai/pai-tos/internal/tos"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a TOS workbook",
		Long: `Generate a TOS, quiz and answer key and write them to an .xlsx workbook.

Competencies come from --file (one "CODE: Description" per line, "-" for
stdin), from --codes picked out of the bank for --subject/--grade/--quarter,
or, when neither is given, every competency of that quarter.`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}

	cmd.Flags().String("school", "", "School name for the cover sheet")
	cmd.Flags().String("teacher", "", "Teacher name for the cover sheet")
	cmd.Flags().String("grade", "", "Grade level (e.g. \"Grade 8\")")
	cmd.Flags().String("subject", "", "Subject (e.g. Science)")
	cmd.Flags().String("quarter", "", "Quarter (e.g. Q3)")
	cmd.Flags().String("date", "", "Date for the cover sheet (default today)")
	cmd.Flags().Int("items", 0, "Total number of items (default TOS_ALLOCATION_DEFAULT_ITEMS)")
	cmd.Flags().StringSlice("codes", nil, "MELC codes to include, comma separated")
	cmd.Flags().String("file", "", "Read free-form competencies from a file")
	cmd.Flags().String("out", "", "Output path (default TOS_Quiz_<grade>_<subject>_<quarter>.xlsx)")
	cmd.Flags().Bool("legacy", false, "Use legacy per-competency rounding")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if legacy, _ := cmd.Flags().GetBool("legacy"); legacy {
		cfg.Allocation.LegacyRounding = true
	}

	meta := assessment.Metadata{}
	meta.School, _ = cmd.Flags().GetString("school")
	meta.Teacher, _ = cmd.Flags().GetString("teacher")
	meta.Grade, _ = cmd.Flags().GetString("grade")
	meta.Subject, _ = cmd.Flags().GetString("subject")
	meta.Quarter, _ = cmd.Flags().GetString("quarter")
	meta.Date, _ = cmd.Flags().GetString("date")
	if meta.Date == "" {
		meta.Date = time.Now().Format("2006-01-02")
	}

	items, _ := cmd.Flags().GetInt("items")
	if items == 0 {
		items = cfg.Allocation.DefaultItems
	}
	if items < cfg.Allocation.MinItems || items > cfg.Allocation.MaxItems {
		return fmt.Errorf("--items must be within [%d, %d], got %d", cfg.Allocation.MinItems, cfg.Allocation.MaxItems, items)
	}

	comps, err := generateCompetencies(cmd, cfg, meta)
	if err != nil {
		return err
	}

	builder, err := app.NewBuilder(cfg.Allocation)
	if err != nil {
		return err
	}
	res, err := builder.Build(assessment.Request{
		Metadata:     meta,
		Competencies: comps,
		TotalItems:   items,
	})
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = document.Filename(meta)
	}
	if err := writeWorkbook(out, res); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printSummary(w, res.Summary)
	fmt.Fprintf(w, "\nWrote %s\n", out)
	return nil
}

func generateCompetencies(cmd *cobra.Command, cfg *config.Config, meta assessment.Metadata) ([]tos.Competency, error) {
	file, _ := cmd.Flags().GetString("file")
	codes, _ := cmd.Flags().GetStringSlice("codes")

	if file != "" {
		if len(codes) > 0 {
			return nil, fmt.Errorf("use --file or --codes, not both")
		}
		text, err := readFreeForm(cmd.InOrStdin(), file)
		if err != nil {
			return nil, err
		}
		return curriculum.ParseFreeForm(text), nil
	}

	if meta.Subject == "" || meta.Grade == "" || meta.Quarter == "" {
		return nil, fmt.Errorf("--subject, --grade and --quarter are required without --file")
	}

	src, db, err := app.OpenSource(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	if db != nil {
		defer db.Close()
	}

	bank, err := src.Competencies(cmd.Context(), meta.Subject, meta.Grade, meta.Quarter)
	if err != nil {
		return nil, fmt.Errorf("load competencies: %w", err)
	}
	if len(codes) == 0 {
		if len(bank) == 0 {
			return nil, fmt.Errorf("no competencies found for %s %s %s", meta.Subject, meta.Grade, meta.Quarter)
		}
		return bank, nil
	}
	return curriculum.Select(bank, codes)
}

func readFreeForm(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read competencies file: %w", err)
	}
	return string(data), nil
}

func writeWorkbook(path string, res *assessment.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := document.Write(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printSummary renders the competency × level grid as a plain-text table.
func printSummary(w io.Writer, s tos.Summary) {
	fmt.Fprintf(w, "%-16s", "Competency")
	for _, l := range tos.Levels {
		fmt.Fprintf(w, "  %13s", l)
	}
	fmt.Fprintf(w, "  %5s  %6s\n", "Items", "Points")
	fmt.Fprintln(w, strings.Repeat("─", 16+len(tos.Levels)*15+15))

	for _, cs := range s.Competencies {
		code := cs.Competency.Code
		if len(code) > 16 {
			code = code[:13] + "..."
		}
		fmt.Fprintf(w, "%-16s", code)
		for _, l := range tos.Levels {
			fmt.Fprintf(w, "  %13d", cs.Counts[l])
		}
		fmt.Fprintf(w, "  %5d  %6d\n", cs.Items, cs.Points)
	}

	fmt.Fprintf(w, "%-16s", "Total")
	for _, l := range tos.Levels {
		fmt.Fprintf(w, "  %13d", s.LevelTotals[l])
	}
	fmt.Fprintf(w, "  %5d  %6d\n", s.TotalItems, s.TotalPoints)
}
