package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/teleops/dashstrap/bootstrap"
	"github.com/teleops/dashstrap/config"
	"github.com/teleops/dashstrap/convert"
	"github.com/teleops/dashstrap/doctor"
	"github.com/teleops/dashstrap/journal"
	"github.com/teleops/dashstrap/models"
)

type App struct {
	configPath string
}

func newUpCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Run the bootstrap sequence and launch the dashboard (default command)",
		Args:  cobra.NoArgs,
		Run:   app.handleUp,
	}
	return cmd
}

func newDoctorCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run pre-flight checks without launching anything and print a JSON report",
		Args:  cobra.NoArgs,
		Run:   app.handleDoctor,
	}
	return cmd
}

func newConvertCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <records-csv> [output-dir]",
		Short: "Convert a telecom customer records CSV into TMF717 Customer360 JSON documents (default output dir: tmf717_output)",
		Args:  cobra.RangeArgs(1, 2),
		Run:   app.handleConvert,
	}
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [limit]",
		Short: "Show recent bootstrap runs and their step outcomes (default limit: 10)",
		Args:  cobra.MaximumNArgs(1),
		Run:   app.handleHistory,
	}
	return cmd
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashstrap",
		Short: "Bootstrap and launch the consolidated telecom dashboard",
		Args:  cobra.NoArgs,
		// Running with no subcommand is the zero-argument launcher flow.
		Run: app.handleUp,
	}
	cmd.PersistentFlags().StringVar(&app.configPath, "config", "", "path to dashstrap.yaml")
	cmd.AddCommand(
		newUpCmd(app),
		newDoctorCmd(app),
		newConvertCmd(app),
		newHistoryCmd(app),
	)
	return cmd
}

func (a *App) loadConfig() *config.Config {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func (a *App) handleUp(cmd *cobra.Command, args []string) {
	cfg := a.loadConfig()

	seq := bootstrap.New(cfg, bootstrap.ExecRunner{})

	startedAt := time.Now()
	results, runErr := seq.Run(cmd.Context())
	finishedAt := time.Now()

	status := models.StatusOK
	if runErr != nil {
		status = models.StatusError
	}
	recordRun(cfg, status, startedAt, finishedAt, results)

	if runErr != nil {
		os.Exit(1)
	}
}

// recordRun appends the run to the journal. Journal trouble must never
// break the launcher, so failures are only logged.
func recordRun(cfg *config.Config, status string, startedAt, finishedAt time.Time, steps []models.StepResult) {
	db, err := journal.Open(cfg.JournalDB)
	if err != nil {
		log.Printf("Error opening run journal: %v", err)
		return
	}
	defer db.Close()

	if _, err := journal.RecordRun(db, status, startedAt, finishedAt, steps); err != nil {
		log.Printf("Error recording run: %v", err)
	}
}

func (a *App) handleDoctor(cmd *cobra.Command, args []string) {
	cfg := a.loadConfig()

	report := doctor.Run(cmd.Context(), cfg)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Printf(`{"status":%q}`+"\n", report.Status)
	}

	if report.Status == models.StatusError {
		os.Exit(1)
	}
}

func (a *App) handleConvert(cmd *cobra.Command, args []string) {
	config, err := convert.ParseConfig(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	written, err := convert.Run(config)
	if err != nil {
		fmt.Printf("Error during convert operation: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d TMF717 documents to %s\n", written, config.OutputDir)
}

func (a *App) handleHistory(cmd *cobra.Command, args []string) {
	cfg := a.loadConfig()

	limit := 10
	if len(args) == 1 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			fmt.Printf("Error: limit must be a positive number, got %q\n", args[0])
			os.Exit(1)
		}
		limit = parsed
	}

	db, err := journal.Open(cfg.JournalDB)
	if err != nil {
		fmt.Printf("Error opening run journal: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	runs, err := journal.RecentRuns(db, limit)
	if err != nil {
		fmt.Printf("Error reading run journal: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs")
		return
	}

	for _, run := range runs {
		fmt.Printf("run %d \t %s \t %s (%.1fs)\n",
			run.ID, run.Status,
			run.StartedAt.Local().Format(time.DateTime),
			run.FinishedAt.Sub(run.StartedAt).Seconds())
		for _, step := range run.Steps {
			if step.Detail != "" {
				fmt.Printf("  %-18s %s \t %s\n", step.Name, step.Status, step.Detail)
			} else {
				fmt.Printf("  %-18s %s\n", step.Name, step.Status)
			}
		}
	}
}

// Execute initializes and runs the root command. It is the single entry point
// for the command-line interface.
func Execute() {
	app := &App{}
	rootCmd := newRootCmd(app)
	if err := rootCmd.Execute(); err != nil {
		// Cobra prints the error, so we just need to exit.
		os.Exit(1)
	}
}
