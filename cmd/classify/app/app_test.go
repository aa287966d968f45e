package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haampie/classify-text-experiment/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Workers:       1,
		ChunkSize:     4096,
		ProgressEvery: 10000,
		Encodings:     config.DefaultEncodings,
		Excludes:      []string{"/.spack/", "/.spack-db/"},
		OutputDir:     "/out",
		Format:        "text",
		BatchSize:     1000,
		NoColor:       true,
	}
}

func testTree(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	for path, content := range map[string]string{
		"/store/a.bin":             "\x7fELF\x02\x01",
		"/store/b.txt":             "héllo",
		"/store/c.txt":             "\x00\x01\x02",
		"/store/.spack/spec.json":  "{}",
		"/store/lib/empty.so":      "",
		"/store/share/doc/wide.md": "\xff\xfeh\x00i\x00",
	} {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	return fs
}

func newTestApp(t *testing.T, cfg *config.Config, fs afero.Fs) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := New(cfg, nil).WithFs(fs).WithOutput(&stdout, &stderr)
	t.Cleanup(func() { a.Shutdown() })
	return a, &stdout, &stderr
}

func TestScan(t *testing.T) {
	fs := testTree(t)
	a, stdout, stderr := newTestApp(t, testConfig(), fs)

	require.NoError(t, a.Scan("/store"))

	lists := map[string]string{
		"all.txt":        "/store/a.bin\n/store/b.txt\n/store/c.txt\n/store/share/doc/wide.md\n",
		"utf-8.txt":      "/store/b.txt\n",
		"utf-16.txt":     "/store/share/doc/wide.md\n",
		"iso-8859-1.txt": "",
	}
	for name, want := range lists {
		data, err := afero.ReadFile(fs, "/out/"+name)
		require.NoError(t, err, name)
		assert.Equal(t, want, string(data), name)
	}

	out := stdout.String()
	assert.Contains(t, out, "Classification summary for /store")
	assert.Contains(t, out, "  Files:         4")
	assert.Contains(t, out, "  Skipped:       1")
	assert.Contains(t, out, "  Output:        /out")

	assert.True(t, strings.HasPrefix(stderr.String(), "      4 files: utf-8:       1, utf-16:       1"),
		"final progress line goes to stderr: %q", stderr.String())
}

func TestScanDryRunJSON(t *testing.T) {
	fs := testTree(t)
	cfg := testConfig()
	cfg.DryRun = true
	cfg.Format = "json"
	cfg.NoProgress = true
	cfg.Workers = 4
	a, stdout, stderr := newTestApp(t, cfg, fs)

	require.NoError(t, a.Scan("/store"))

	exists, err := afero.DirExists(fs, "/out")
	require.NoError(t, err)
	assert.False(t, exists, "dry run writes no lists")
	assert.Empty(t, stderr.String())

	var summary map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	assert.EqualValues(t, 4, summary["files"])
	assert.EqualValues(t, 1, summary["binary"])
	assert.EqualValues(t, 1, summary["unclassified"])
	assert.NotContains(t, summary, "outputDir")
}

func TestScanSummaryFile(t *testing.T) {
	fs := testTree(t)
	cfg := testConfig()
	cfg.Format = "yaml"
	cfg.SummaryFile = "/reports/summary.yaml"
	cfg.NoColor = false
	require.NoError(t, fs.MkdirAll("/reports", 0755))
	a, stdout, _ := newTestApp(t, cfg, fs)

	require.NoError(t, a.Scan("/store"))

	assert.Empty(t, stdout.String())
	data, err := afero.ReadFile(fs, "/reports/summary.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "root: /store")
	assert.NotContains(t, string(data), "\x1b[")
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name   string
		root   string
		fs     func(*testing.T) afero.Fs
		errMsg string
	}{
		{
			name:   "missing root",
			root:   "/nope",
			fs:     testTree,
			errMsg: "scan operation failed",
		},
		{
			name:   "root is a file",
			root:   "/store/b.txt",
			fs:     testTree,
			errMsg: "root is not a directory",
		},
		{
			name: "read-only output directory",
			root: "/store",
			fs: func(t *testing.T) afero.Fs {
				return afero.NewReadOnlyFs(testTree(t))
			},
			errMsg: "failed to create path lists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, stdout, _ := newTestApp(t, testConfig(), tt.fs(t))
			err := a.Scan(tt.root)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestScanCancelled(t *testing.T) {
	a, _, _ := newTestApp(t, testConfig(), testTree(t))
	a.cancel()

	err := a.Scan("/store")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMime(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/list.txt", []byte("/a.txt\n/b.so\n\n/c.sh\n"), 0644))

	cfg := testConfig()
	cfg.BatchSize = 2
	cfg.NoProgress = true
	a, stdout, stderr := newTestApp(t, cfg, fs)
	a.WithCommand(func(_ context.Context, paths []string) ([]byte, error) {
		var b strings.Builder
		for _, p := range paths {
			switch {
			case strings.HasSuffix(p, ".so"):
				b.WriteString("application/x-sharedlib\n")
			case strings.HasSuffix(p, ".sh"):
				return nil, errors.New("exit status 1")
			default:
				b.WriteString("text/plain\n")
			}
		}
		return []byte(b.String()), nil
	})

	require.NoError(t, a.Mime("/list.txt"))
	assert.Equal(t, "/a.txt\n", stdout.String())
	assert.Contains(t, stderr.String(), "error processing /c.sh: exit status 1")

	assert.Error(t, a.Mime("/missing.txt"))
}

func TestSignals(t *testing.T) {
	a, _, _ := newTestApp(t, testConfig(), afero.NewMemMapFs())

	exited := make(chan int, 1)
	a.exit = func(code int) { exited <- code }

	a.signals <- syscall.SIGINT
	select {
	case <-a.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("first signal did not cancel the run")
	}

	a.signals <- syscall.SIGTERM
	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(time.Second):
		t.Fatal("second signal did not force exit")
	}
}

func TestShutdownIdempotent(t *testing.T) {
	a, _, _ := newTestApp(t, testConfig(), afero.NewMemMapFs())
	assert.NoError(t, a.Shutdown())
	assert.NoError(t, a.Shutdown())
	assert.Error(t, a.ctx.Err())
}
