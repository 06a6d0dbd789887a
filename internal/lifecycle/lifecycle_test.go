package lifecycle

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"axd/internal/config"
	"axd/internal/logging"
	"axd/internal/platform"
	"axd/internal/platform/fake"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	scanner := bufio.NewScanner(r)
	var out string
	if scanner.Scan() {
		out = scanner.Text()
	}
	return out
}

// The target application's exit must tear the server down and emit a
// bootstrap record naming its app/host/pid/port before that (spec.md §8
// lifecycle-bootstrap scenario, bound at 2s).
func TestRunEmitsBootstrapAndStopsOnTargetExit(t *testing.T) {
	f := fake.New()
	target := platform.ProcessInfo{PID: 4242, Name: "Notes", BundleID: "com.apple.Notes"}
	f.SetProcess(target)

	cfg := config.DefaultConfig()
	cfg.Port = 0 // ephemeral
	cfg.WatchdogPollIntervalMs = 20

	logger, err := logging.New(cfg)
	require.NoError(t, err)

	coord, err := New(cfg, logger, f.Build(), Options{AppSpec: "Notes"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErrCh := make(chan error, 1)
	lineCh := make(chan string, 1)

	go func() {
		lineCh <- captureStdout(t, func() {
			runErrCh <- coord.Run(ctx)
		})
	}()

	// Give Run a moment to bind and print, then simulate the target dying.
	time.Sleep(100 * time.Millisecond)
	f.RemoveProcess(target.PID)

	select {
	case err := <-runErrCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return within the 2s shutdown bound after target exit")
	}

	bootstrapLine := <-lineCh
	var record BootstrapRecord
	require.NoError(t, json.Unmarshal([]byte(bootstrapLine), &record))
	require.Equal(t, "Notes", record.App)
	require.Equal(t, int32(4242), record.PID)
	require.Equal(t, cfg.Host, record.Host)
	require.Positive(t, record.Port)
}

func TestResolveTargetAttachesBeforeLaunching(t *testing.T) {
	f := fake.New()
	f.SetProcess(platform.ProcessInfo{PID: 7, Name: "Notes"})

	info, err := resolveTarget(f, Options{AppSpec: "Notes", Launch: false})
	require.NoError(t, err)
	require.Equal(t, int32(7), info.PID)
}

func TestResolveTargetLaunchesWhenRequested(t *testing.T) {
	f := fake.New()
	f.SetProcess(platform.ProcessInfo{PID: 9, Name: "Notes"})

	info, err := resolveTarget(f, Options{AppSpec: "Notes", Launch: true})
	require.NoError(t, err)
	require.Equal(t, int32(9), info.PID)
}
