package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securevibes/policyvibes/cmd/scan"
	"github.com/securevibes/policyvibes/pkg/shared/config"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatchRescansOnChange(t *testing.T) {
	Init(config.DefaultConfig(), nil)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("x = 1"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, out, &scan.RunOptionsScan{Format: config.FormatJSON, OutputPath: dir, NoColor: true}, []string{dir})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "No violations found.")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte(`ANTHROPIC_AUTH_TOKEN = "secret"`), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "ACTIVE_VIOLATION")
	}, 5*time.Second, 20*time.Millisecond)

	// Writing the report into the watched tree must not cause further rescans.
	time.Sleep(500 * time.Millisecond)
	settled := strings.Count(out.String(), "] scanned ")
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, settled, strings.Count(out.String(), "] scanned "))
	assert.Equal(t, 2, settled)

	cancel()
	require.NoError(t, <-done)
	assert.FileExists(t, filepath.Join(dir, config.DefaultReportFile))
}

func TestRunWatchLeavesCustomReportOut(t *testing.T) {
	Init(config.DefaultConfig(), nil)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte(`ANTHROPIC_AUTH_TOKEN = "secret"`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, out, &scan.RunOptionsScan{Format: config.FormatJSON, OutputPath: filepath.Join(dir, "audit.json"), NoColor: true}, []string{dir})
	}()

	require.Eventually(t, func() bool {
		return strings.Count(out.String(), "] scanned ") == 1
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("x = 1"), 0o644))

	require.Eventually(t, func() bool {
		return strings.Count(out.String(), "] scanned ") == 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	output := out.String()
	last := output[strings.LastIndex(output, "] scanned "):]
	assert.Contains(t, last, "Files scanned: 2")
	assert.Contains(t, last, "Active violations: 1")
	assert.NotContains(t, last, "audit.json:")
}

func TestRunWatchRejectsFile(t *testing.T) {
	Init(config.DefaultConfig(), nil)
	file := filepath.Join(t.TempDir(), "main.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1"), 0o644))

	err := runWatch(context.Background(), &bytes.Buffer{}, &scan.RunOptionsScan{}, []string{file})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a directory")

	err = runWatch(context.Background(), &bytes.Buffer{}, &scan.RunOptionsScan{}, []string{filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestReportFilter(t *testing.T) {
	ignore := reportFilter(filepath.Join("out", "custom.sarif"))

	assert.True(t, ignore(filepath.Join("repo", config.DefaultReportFile)))
	assert.True(t, ignore(filepath.Join("repo", config.DefaultReportFile+".tmp.42")))
	assert.True(t, ignore(filepath.Join("repo", scan.DefaultSarifFile)))
	assert.True(t, ignore(filepath.Join("repo", "custom.sarif.tmp.7")))
	assert.False(t, ignore(filepath.Join("repo", "app.py")))

	assert.False(t, reportFilter("")(filepath.Join("repo", "custom.sarif")))
}
