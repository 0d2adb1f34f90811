package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/internal/planner"
	"github.com/noah-isme/studysync-api/internal/service"
	"github.com/noah-isme/studysync-api/pkg/export"
)

var (
	planInput  string
	planToday  string
	planICS    string
	planOutput string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a study schedule from a YAML or JSON document",
	Long: `Reads homework, commitments and optional preferences from a document and prints the
planned schedule as JSON. Nothing is stored.

Examples:
  # Plan from YAML, starting today
  studysync plan -f week.yaml

  # Pin the start date and write an iCalendar file as well
  studysync plan -f week.json --today 2024-01-01 --ics schedule.ics

  # Read the document from stdin
  cat week.yaml | studysync plan -f -
`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planInput, "file", "f", "", "Input document (.yaml, .yml, .json, or - for stdin)")
	planCmd.Flags().StringVar(&planToday, "today", "", "Override the start date (YYYY-MM-DD)")
	planCmd.Flags().StringVar(&planICS, "ics", "", "Also write the schedule as an iCalendar file")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "", "Write JSON here instead of stdout")
	_ = planCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	req, err := readPlanDocument(planInput, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if planToday != "" {
		req.Today = &planToday
	}
	if err := validator.New().Struct(req); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}

	inputs, err := service.PreviewInputs(*req)
	if err != nil {
		return err
	}
	opts, err := service.PlannerOptions(cfg.Planner)
	if err != nil {
		return err
	}
	if inputs.Today != nil {
		today := *inputs.Today
		opts = append(opts, planner.WithClock(func() time.Time { return today }))
	}

	started := time.Now()
	result, err := planner.New(opts...).Generate(inputs.Homework, inputs.Commitments, inputs.Preferences)
	if err != nil {
		return err
	}
	logr.Debug("schedule planned",
		zap.Int("homework", len(inputs.Homework)),
		zap.Int("entries", len(result.Schedule)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("took", time.Since(started)))
	for _, w := range result.Warnings {
		logr.Warn("homework not fully scheduled",
			zap.String("homework", w.Homework),
			zap.String("kind", string(w.Kind)),
			zap.Float64("needed", w.Needed))
	}

	if planICS != "" {
		if err := writeICS(planICS, result); err != nil {
			return err
		}
		logr.Info("calendar written", zap.String("path", planICS))
	}

	warnings := result.Warnings
	if warnings == nil {
		warnings = []models.ScheduleWarning{}
	}
	out := dto.ScheduleResponse{
		Today:    result.Today.Format("2006-01-02"),
		Schedule: service.EntryViews(result.Schedule),
		Warnings: warnings,
		Outcomes: result.Outcomes,
	}
	return writeJSON(planOutput, cmd.OutOrStdout(), out)
}

func readPlanDocument(path string, stdin io.Reader) (*dto.PreviewScheduleRequest, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var req dto.PreviewScheduleRequest
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return &req, nil
	}
	// JSON is valid YAML, so stdin and unknown extensions go through the YAML decoder.
	if err := yaml.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &req, nil
}

func writeICS(path string, result *planner.Result) error {
	exporter := export.NewICSExporter(cfg.Exports.UIDDomain)
	cal := service.BuildCalendar(cfg.Exports.CalendarName, result.Schedule, nil, result.Today)
	data, err := exporter.Render(cal)
	if err != nil {
		return fmt.Errorf("render calendar: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

func writeJSON(path string, stdout io.Writer, v interface{}) error {
	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
