package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haampie/classify-text-experiment/pkg/logger"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{
		"a.bin":               "\x7fELF\x02\x01\x01",
		"b.txt":               "héllo",
		"c.txt":               "\x00\x01\x02",
		"empty":               "",
		".spack/spec.json":    "{}",
		"share/doc/README.md": "plain ascii\n",
	} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestRootScansByDefault(t *testing.T) {
	root := writeTree(t)

	stdout, _, err := execute(t, "--dry-run", "--no-progress", "-f", "json", root)
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.EqualValues(t, 4, summary["files"])
	assert.EqualValues(t, 1, summary["skipped"])
	assert.Equal(t, map[string]any{"utf-8": 2.0, "utf-16": 0.0, "iso-8859-1": 0.0}, summary["encodings"])
}

func TestScanEncodingOrder(t *testing.T) {
	root := writeTree(t)

	stdout, _, err := execute(t, "--dry-run", "--no-progress", "-f", "json", "--encodings", "iso-8859-1", root)
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, map[string]any{"utf-8": 0.0, "utf-16": 0.0, "iso-8859-1": 2.0}, summary["encodings"])
	assert.EqualValues(t, 1, summary["unclassified"])
}

func TestScanWritesLists(t *testing.T) {
	root := writeTree(t)
	out := t.TempDir()

	stdout, stderr, err := execute(t, "scan", "--no-color", "-o", out, "-w", "2", "-i", "*.md", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Classification summary for "+root)
	assert.Contains(t, stderr, "      3 files:")

	all, err := os.ReadFile(filepath.Join(out, "all.txt"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.bin"),
		filepath.Join(root, "b.txt"),
		filepath.Join(root, "c.txt"),
	}, strings.Fields(string(all)))

	utf8, err := os.ReadFile(filepath.Join(out, "utf-8.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "b.txt")+"\n", string(utf8))
}

func TestScanArguments(t *testing.T) {
	root := writeTree(t)

	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{"no root", []string{}, "accepts 1 arg(s), received 0"},
		{"two roots", []string{root, root}, "accepts 1 arg(s), received 2"},
		{"scan without root", []string{"scan"}, "accepts 1 arg(s), received 0"},
		{"chunk size too small", []string{"--dry-run", "-b", "10", root}, "chunk size must be at least 64 bytes"},
		{"bad format", []string{"--dry-run", "-f", "xml", root}, "invalid summary format"},
		{"unknown encoding", []string{"--dry-run", "--encodings", "utf-8,koi8-r", root}, "unknown encoding"},
		{"missing root", []string{"--dry-run", filepath.Join(root, "nope")}, "scan operation failed"},
		{"missing config file", []string{"--config", filepath.Join(root, "nope.yaml"), root}, "failed to load configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestScanConfigFile(t *testing.T) {
	root := writeTree(t)
	cfgPath := filepath.Join(t.TempDir(), "classify.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format: yaml\ndry_run: true\nno_progress: true\n"), 0644))

	stdout, _, err := execute(t, "--config", cfgPath, root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "files: 4")
}

func TestMimeCommand(t *testing.T) {
	list := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(list, nil, 0644))

	stdout, _, err := execute(t, "mime", "--no-progress", list)
	require.NoError(t, err, "an empty list never invokes the utility")
	assert.Empty(t, stdout)

	_, _, err = execute(t, "mime", "--batch-size", "0", list)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch size must be positive")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "classify "))

	stdout, _, err = execute(t, "version", "--full")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Version Information:")
}

func TestLogEncoding(t *testing.T) {
	assert.Equal(t, logger.EncodingJSON, logEncoding(&bytes.Buffer{}))
}
