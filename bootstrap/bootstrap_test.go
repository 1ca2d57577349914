package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teleops/dashstrap/config"
	"github.com/teleops/dashstrap/models"
)

type call struct {
	name string
	args []string
}

// fakeRunner records invocations and fails commands listed in errs.
type fakeRunner struct {
	calls []call
	errs  map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.errs[name]
}

func (f *fakeRunner) callsTo(name string) []call {
	var matched []call
	for _, c := range f.calls {
		if c.name == name {
			matched = append(matched, c)
		}
	}
	return matched
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		Entrypoint:  filepath.Join(dir, "dashboard.py"),
		OutputDir:   filepath.Join(dir, "output"),
		DataPattern: "*.csv",
		Generator:   filepath.Join(dir, "generator.py"),
		Python:      "python3",
		Pip:         "pip3",
		Streamlit:   "streamlit",
		Packages:    []string{"streamlit", "pandas"},
	}
}

func newTestSequencer(cfg *config.Config, runner Runner) (*Sequencer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Sequencer{
		cfg:    cfg,
		runner: runner,
		stdin:  strings.NewReader("\n"),
		stdout: out,
	}, out
}

func writeEntrypoint(t *testing.T, cfg *config.Config) {
	t.Helper()
	err := os.WriteFile(cfg.Entrypoint, []byte("import streamlit as st"), 0o644)
	require.NoError(t, err)
}

func writeGenerator(t *testing.T, cfg *config.Config) {
	t.Helper()
	err := os.WriteFile(cfg.Generator, []byte("print('generating')"), 0o644)
	require.NoError(t, err)
}

func TestRun_MissingEntrypoint(t *testing.T) {
	cfg := testConfig(t.TempDir())
	runner := &fakeRunner{}
	seq, out := newTestSequencer(cfg, runner)

	results, err := seq.Run(context.Background())

	require.ErrorIs(t, err, ErrEntrypointMissing)
	require.Len(t, results, 1)
	assert.Equal(t, "check-entrypoint", results[0].Name)
	assert.Equal(t, models.StatusError, results[0].Status)

	// No later step may run: no subprocess calls, no directory created.
	assert.Empty(t, runner.calls)
	_, statErr := os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(statErr))

	assert.Contains(t, out.String(), "not found")
}

func TestRun_CreatesOutputDirIdempotent(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeEntrypoint(t, cfg)

	for i := 0; i < 2; i++ {
		seq, _ := newTestSequencer(cfg, &fakeRunner{})
		_, err := seq.Run(context.Background())
		require.NoError(t, err)

		info, statErr := os.Stat(cfg.OutputDir)
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	}
}

func TestRun_NoDataAndNoGeneratorWarnsAndLaunches(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeEntrypoint(t, cfg)
	runner := &fakeRunner{}
	seq, _ := newTestSequencer(cfg, runner)

	results, err := seq.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, models.StatusWarning, results[3].Status)
	assert.Empty(t, runner.callsTo(cfg.Python))
	require.Len(t, runner.callsTo(cfg.Streamlit), 1)
}

func TestRun_GeneratorInvokedOnceWhenNoData(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeEntrypoint(t, cfg)
	writeGenerator(t, cfg)
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o755))

	runner := &fakeRunner{}
	seq, _ := newTestSequencer(cfg, runner)

	_, err := seq.Run(context.Background())
	require.NoError(t, err)

	generatorCalls := runner.callsTo(cfg.Python)
	require.Len(t, generatorCalls, 1)
	assert.Equal(t, []string{cfg.Generator}, generatorCalls[0].args)

	// Order: install, then generator, then launch.
	require.Len(t, runner.calls, 3)
	assert.Equal(t, cfg.Pip, runner.calls[0].name)
	assert.Equal(t, cfg.Python, runner.calls[1].name)
	assert.Equal(t, cfg.Streamlit, runner.calls[2].name)
}

func TestRun_ExistingDataSkipsGenerator(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeEntrypoint(t, cfg)
	writeGenerator(t, cfg)
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o755))
	dataFile := filepath.Join(cfg.OutputDir, "telecom_customer_records_20250101_120000.csv")
	require.NoError(t, os.WriteFile(dataFile, []byte("header\n"), 0o644))

	runner := &fakeRunner{}
	seq, _ := newTestSequencer(cfg, runner)

	results, err := seq.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StatusSkipped, results[3].Status)
	assert.Empty(t, runner.callsTo(cfg.Python))

	// Exactly one install call and one launch call, in that order.
	require.Len(t, runner.calls, 2)
	assert.Equal(t, cfg.Pip, runner.calls[0].name)
	assert.Equal(t, []string{"install", "--upgrade", "streamlit", "pandas"}, runner.calls[0].args)
	assert.Equal(t, cfg.Streamlit, runner.calls[1].name)
	assert.Equal(t, []string{"run", cfg.Entrypoint}, runner.calls[1].args)
}

func TestRun_InstallFailureStillLaunches(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeEntrypoint(t, cfg)
	runner := &fakeRunner{errs: map[string]error{cfg.Pip: errors.New("pip exploded")}}
	seq, _ := newTestSequencer(cfg, runner)

	results, err := seq.Run(context.Background())
	require.NoError(t, err)

	// Install exit status is deliberately not checked.
	assert.Equal(t, models.StatusOK, results[1].Status)
	require.Len(t, runner.callsTo(cfg.Streamlit), 1)
}

func TestRun_GeneratorFailureStillLaunches(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeEntrypoint(t, cfg)
	writeGenerator(t, cfg)
	runner := &fakeRunner{errs: map[string]error{cfg.Python: errors.New("generator crashed")}}
	seq, _ := newTestSequencer(cfg, runner)

	_, err := seq.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, runner.callsTo(cfg.Python), 1)
	require.Len(t, runner.callsTo(cfg.Streamlit), 1)
}

func TestRun_DashboardExitFailureKeepsExitCodeZero(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeEntrypoint(t, cfg)
	runner := &fakeRunner{errs: map[string]error{cfg.Streamlit: errors.New("exit status 1")}}
	seq, out := newTestSequencer(cfg, runner)

	results, err := seq.Run(context.Background())
	require.NoError(t, err)

	last := results[len(results)-1]
	assert.Equal(t, "launch-dashboard", last.Name)
	assert.Equal(t, models.StatusOK, last.Status)
	assert.Contains(t, last.Detail, "dashboard exited")

	// The terminal stays open for inspection after the dashboard exits.
	assert.Contains(t, out.String(), "Press Enter to exit")
}
