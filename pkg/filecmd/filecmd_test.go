package filecmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	lines []string
	done  string
}

func (r *recorder) Report(line string) { r.lines = append(r.lines, line) }
func (r *recorder) Done(line string)   { r.done = line }

// fakeFile answers from a fixed path -> mime table and fails batches that
// contain a path starting with "bad".
func fakeFile(types map[string]string, calls *[][]string) CommandFunc {
	return func(_ context.Context, paths []string) ([]byte, error) {
		*calls = append(*calls, append([]string(nil), paths...))
		var b strings.Builder
		for _, p := range paths {
			if strings.HasPrefix(p, "bad") {
				return nil, errors.New("exit status 1")
			}
			b.WriteString(types[p] + "\n")
		}
		return []byte(b.String()), nil
	}
}

func TestRun(t *testing.T) {
	types := map[string]string{
		"a.txt": "text/plain",
		"b.so":  "application/x-sharedlib",
		"c.py":  "text/x-script.python",
		"d.png": "image/png",
		"e.sh":  "text/x-shellscript",
	}

	tests := []struct {
		name      string
		paths     []string
		batchSize int
		wantText  []string
		wantErrs  []string
		wantCalls int
		wantLines []string
	}{
		{
			name:      "single batch",
			paths:     []string{"a.txt", "b.so", "c.py"},
			batchSize: 10,
			wantText:  []string{"a.txt", "c.py"},
			wantCalls: 1,
			wantLines: []string{"Progress: 100.00%"},
		},
		{
			name:      "batched",
			paths:     []string{"a.txt", "b.so", "c.py", "d.png", "e.sh"},
			batchSize: 2,
			wantText:  []string{"a.txt", "c.py", "e.sh"},
			wantCalls: 3,
			wantLines: []string{"Progress: 40.00%", "Progress: 80.00%", "Progress: 100.00%"},
		},
		{
			name:      "failing batch continues",
			paths:     []string{"a.txt", "bad1", "d.png", "e.sh"},
			batchSize: 2,
			wantText:  []string{"e.sh"},
			wantErrs:  []string{"a.txt", "bad1"},
			wantCalls: 2,
			wantLines: []string{"Progress: 50.00%"},
		},
		{
			name:      "empty list",
			batchSize: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls [][]string
			rec := &recorder{}
			r := New(Config{BatchSize: tt.batchSize}, nil).
				WithCommand(fakeFile(types, &calls)).
				WithReporter(rec)

			var text []string
			result, err := r.Run(context.Background(), tt.paths, func(p string) {
				text = append(text, p)
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, len(tt.wantText), result.Text)
			assert.Len(t, calls, tt.wantCalls)
			assert.Equal(t, tt.wantLines, rec.lines)
			assert.NotEmpty(t, rec.done)

			var failed []string
			for _, e := range result.Errors {
				failed = append(failed, e.Path)
				assert.Contains(t, e.Error(), "error processing "+e.Path)
			}
			assert.Equal(t, tt.wantErrs, failed)
			assert.Equal(t, len(tt.paths)-len(tt.wantErrs), result.Processed)
		})
	}
}

func TestRunMismatchedOutput(t *testing.T) {
	r := New(Config{}, nil).WithCommand(func(context.Context, []string) ([]byte, error) {
		return []byte("text/plain\n"), nil
	})

	result, err := r.Run(context.Background(), []string{"x", "y"}, nil)
	require.NoError(t, err)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0].Error(), "expected 2 mime types, got 1")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls [][]string
	r := New(Config{}, nil).WithCommand(fakeFile(nil, &calls))

	_, err := r.Run(ctx, []string{"a"}, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, calls)
}

func TestIsText(t *testing.T) {
	tests := []struct {
		mime string
		want bool
	}{
		{"text/plain", true},
		{" text/html ", true},
		{"application/json", false},
		{"inode/x-empty", false},
		{"text", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isText(tt.mime), tt.mime)
	}
}

func TestReadList(t *testing.T) {
	paths, err := ReadList(strings.NewReader("  /a/b.txt \n\n/c d/e\n\t\n/f"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/b.txt", "/c d/e", "/f"}, paths)
}

func TestDefaults(t *testing.T) {
	r := New(Config{}, nil)
	assert.Equal(t, DefaultBatchSize, r.cfg.BatchSize)
	assert.Equal(t, DefaultCommand, r.cfg.Command)
}
