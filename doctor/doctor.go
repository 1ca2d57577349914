package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/teleops/dashstrap/config"
	"github.com/teleops/dashstrap/file"
	"github.com/teleops/dashstrap/models"
	"github.com/teleops/dashstrap/probe"
)

// Report aggregates the pre-flight checks. Status is "error" when a check
// the launcher cannot run without has failed; otherwise "ok".
type Report struct {
	Status string               `json:"status"`
	Checks []models.CheckResult `json:"checks"`
}

// Run performs every pre-flight check without mutating anything: it does
// not create directories, install packages or start processes. Only the
// entry-point and python checks are load-bearing; the rest are advisory.
func Run(ctx context.Context, cfg *config.Config) Report {
	var checks []models.CheckResult

	entrypoint := models.CheckResult{Name: "entrypoint", OK: file.Exists(cfg.Entrypoint)}
	if !entrypoint.OK {
		entrypoint.Error = fmt.Sprintf("%s not found", cfg.Entrypoint)
	}
	checks = append(checks, entrypoint)

	python := models.CheckResult{Name: "python"}
	if _, err := exec.LookPath(cfg.Python); err != nil {
		python.Error = err.Error()
	} else {
		python.OK = true
	}
	checks = append(checks, python)

	outputDir := models.CheckResult{Name: "output-dir"}
	if info, err := os.Stat(cfg.OutputDir); err != nil {
		outputDir.Error = fmt.Sprintf("%s does not exist (created on first run)", cfg.OutputDir)
	} else if !info.IsDir() {
		outputDir.Error = fmt.Sprintf("%s exists but is not a directory", cfg.OutputDir)
	} else {
		outputDir.OK = true
	}
	checks = append(checks, outputDir)

	data := models.CheckResult{Name: "data-files"}
	files, err := file.MatchingFiles(cfg.OutputDir, cfg.DataPattern)
	switch {
	case err != nil:
		data.Error = err.Error()
	case len(files) == 0:
		data.Error = fmt.Sprintf("no files matching %s in %s", cfg.DataPattern, cfg.OutputDir)
	default:
		data.OK = true
	}
	checks = append(checks, data)

	generator := models.CheckResult{Name: "generator", OK: file.Exists(cfg.Generator)}
	if !generator.OK {
		generator.Error = fmt.Sprintf("%s not found", cfg.Generator)
	}
	checks = append(checks, generator)

	dash := probe.Dashboard(ctx, cfg.DashboardURL, cfg.HealthPath, cfg.ProbeTimeout)
	dashboard := models.CheckResult{
		Name:      "dashboard",
		OK:        dash.Reachable,
		LatencyMs: dash.LatencyMs,
		Error:     dash.Error,
	}
	checks = append(checks, dashboard)

	status := models.StatusOK
	if !entrypoint.OK || !python.OK {
		status = models.StatusError
	}

	return Report{Status: status, Checks: checks}
}
