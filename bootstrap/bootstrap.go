package bootstrap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/teleops/dashstrap/config"
	"github.com/teleops/dashstrap/file"
	"github.com/teleops/dashstrap/models"
)

// ErrEntrypointMissing is returned by Run when the dashboard entry-point
// file does not exist. The command layer maps it to exit code 1.
var ErrEntrypointMissing = errors.New("dashboard entry point not found")

// Policy controls how the runner treats a failing step.
type Policy int

const (
	// Fatal stops the sequence on failure.
	Fatal Policy = iota
	// BestEffort logs and continues on failure.
	BestEffort
	// Conditional steps decide at run time whether they apply.
	Conditional
)

// Step is one named entry in the bootstrap sequence.
type Step struct {
	Name   string
	Policy Policy
	run    func(ctx context.Context) models.StepResult
}

// Sequencer runs the fixed bootstrap sequence: check the entry point,
// install Python dependencies, ensure the output directory, generate data
// when none exists, launch the dashboard and wait for a keypress. Steps run
// strictly one after another and every subprocess call blocks; there are no
// retries.
type Sequencer struct {
	cfg    *config.Config
	runner Runner
	stdin  io.Reader
	stdout io.Writer
}

// New returns a Sequencer wired to the real terminal.
func New(cfg *config.Config, runner Runner) *Sequencer {
	return &Sequencer{
		cfg:    cfg,
		runner: runner,
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
}

// Steps returns the ordered bootstrap sequence.
func (s *Sequencer) Steps() []Step {
	return []Step{
		{Name: "check-entrypoint", Policy: Fatal, run: s.checkEntrypoint},
		{Name: "install-deps", Policy: BestEffort, run: s.installDeps},
		{Name: "ensure-output-dir", Policy: BestEffort, run: s.ensureOutputDir},
		{Name: "ensure-data", Policy: Conditional, run: s.ensureData},
		{Name: "launch-dashboard", Policy: BestEffort, run: s.launchDashboard},
	}
}

// Run executes the sequence, halting on the first failed Fatal step and
// otherwise proceeding regardless of outcome. It pauses for a keypress
// before returning so a terminal window stays open for inspection. The
// returned results cover every step that was attempted.
func (s *Sequencer) Run(ctx context.Context) ([]models.StepResult, error) {
	var results []models.StepResult

	for _, step := range s.Steps() {
		res := step.run(ctx)
		res.Name = step.Name
		results = append(results, res)

		if step.Policy == Fatal && res.Status == models.StatusError {
			fmt.Fprintf(s.stdout, "%s\n", res.Detail)
			s.pause()
			return results, fmt.Errorf("%w: %s", ErrEntrypointMissing, s.cfg.Entrypoint)
		}
	}

	s.pause()
	return results, nil
}

func (s *Sequencer) checkEntrypoint(_ context.Context) models.StepResult {
	if !file.Exists(s.cfg.Entrypoint) {
		return models.StepResult{
			Status: models.StatusError,
			Detail: fmt.Sprintf("ERROR: %s not found. Place it next to dashstrap and try again.", s.cfg.Entrypoint),
		}
	}
	return models.StepResult{Status: models.StatusOK}
}

// installDeps invokes pip and deliberately ignores its exit status. A broken
// install surfaces later when the dashboard itself fails to start.
func (s *Sequencer) installDeps(ctx context.Context) models.StepResult {
	log.Printf("Installing dashboard dependencies: %v", s.cfg.Packages)

	args := append([]string{"install", "--upgrade"}, s.cfg.Packages...)
	_ = s.runner.Run(ctx, s.cfg.Pip, args...)

	return models.StepResult{Status: models.StatusOK}
}

func (s *Sequencer) ensureOutputDir(_ context.Context) models.StepResult {
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		log.Printf("Error creating output directory %s: %v", s.cfg.OutputDir, err)
		return models.StepResult{Status: models.StatusError, Detail: err.Error()}
	}
	return models.StepResult{Status: models.StatusOK}
}

// ensureData runs the generator only when the output directory holds no
// matching data files. A missing generator is a warning, not a failure.
func (s *Sequencer) ensureData(ctx context.Context) models.StepResult {
	files, err := file.MatchingFiles(s.cfg.OutputDir, s.cfg.DataPattern)
	if err != nil {
		log.Printf("Error scanning %s: %v", s.cfg.OutputDir, err)
		return models.StepResult{Status: models.StatusError, Detail: err.Error()}
	}

	if len(files) > 0 {
		return models.StepResult{
			Status: models.StatusSkipped,
			Detail: fmt.Sprintf("found %d existing data files", len(files)),
		}
	}

	if !file.Exists(s.cfg.Generator) {
		log.Printf("WARNING: no data files in %s and %s not found, launching anyway", s.cfg.OutputDir, s.cfg.Generator)
		return models.StepResult{
			Status: models.StatusWarning,
			Detail: "no data files and no generator script",
		}
	}

	log.Printf("No data files found, running generator %s", s.cfg.Generator)
	_ = s.runner.Run(ctx, s.cfg.Python, s.cfg.Generator)

	return models.StepResult{Status: models.StatusOK, Detail: "generator invoked"}
}

// launchDashboard blocks until the dashboard process exits or is
// interrupted. Its exit status does not change the sequencer's exit code.
func (s *Sequencer) launchDashboard(ctx context.Context) models.StepResult {
	fmt.Fprintf(s.stdout, "Launching dashboard: %s run %s\n", s.cfg.Streamlit, s.cfg.Entrypoint)

	err := s.runner.Run(ctx, s.cfg.Streamlit, "run", s.cfg.Entrypoint)
	if err != nil {
		return models.StepResult{Status: models.StatusOK, Detail: fmt.Sprintf("dashboard exited: %v", err)}
	}

	return models.StepResult{Status: models.StatusOK}
}

func (s *Sequencer) pause() {
	fmt.Fprint(s.stdout, "Press Enter to exit...")
	_, _ = bufio.NewReader(s.stdin).ReadString('\n')
}
