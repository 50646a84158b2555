package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// cliEnv is a scratch config and data directory pair.
type cliEnv struct {
	configDir string
	dataDir   string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	t.Setenv("CONTEXTREF_BACKEND", "")
	return cliEnv{configDir: t.TempDir(), dataDir: t.TempDir()}
}

func (e cliEnv) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code := Execute(full, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

// mustRun runs a command expected to succeed and decodes its JSON output.
func (e cliEnv) mustRun(t *testing.T, args ...string) map[string]any {
	t.Helper()
	out, errOut, code := e.run(t, append(args, "--json")...)
	require.Equal(t, exitSuccess, code, "stderr: %s", errOut)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc), "output: %s", out)
	return doc
}

func ids(v any) []string {
	arr, _ := v.([]any)
	out := []string{}
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestVersion(t *testing.T) {
	var stdout bytes.Buffer
	code := Execute([]string{"version"}, &stdout, &bytes.Buffer{})
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout.String(), "contextref v")
	assert.Contains(t, stdout.String(), modulePath)
}

func TestInitCreatesConfigAndStorage(t *testing.T) {
	env := newCLIEnv(t)
	out, errOut, code := env.run(t, "init")
	require.Equal(t, exitSuccess, code, errOut)
	assert.Contains(t, out, "contextref initialized")

	assert.FileExists(t, filepath.Join(env.configDir, configFileExt))
	assert.FileExists(t, filepath.Join(env.dataDir, "contextref.db"))

	_, _, code = env.run(t, "init")
	assert.Equal(t, exitSuccess, code, "init is idempotent")
}

func TestModels(t *testing.T) {
	env := newCLIEnv(t)
	out, errOut, code := env.run(t, "models", "--json")
	require.Equal(t, exitSuccess, code, errOut)

	var infos []modelInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 3)
	assert.Equal(t, "Post", infos[0].Name)
	assert.False(t, infos[0].Child)
	assert.Equal(t, "Comment", infos[2].Name)
	assert.True(t, infos[2].Child)
	assert.Equal(t, "comments", infos[2].BackReferenceField)
}

func TestDocumentLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	p1 := env.mustRun(t, "create", "Post", "title=hello")["id"].(string)
	p2 := env.mustRun(t, "create", "Post", "title=other")["id"].(string)

	c := env.mustRun(t, "create", "Comment", "body=hi", "--context-type", "Post", "--context-id", p1)
	c1 := c["id"].(string)
	assert.Equal(t, p1, c["post"], "context serializes under the parent's name")
	assert.NotContains(t, c, types.FieldContextType)

	assert.Equal(t, []string{c1}, ids(env.mustRun(t, "get", "Post", p1)["comments"]))

	out, errOut, code := env.run(t, "list", "Comment", "post="+p1, "--json")
	require.Equal(t, exitSuccess, code, errOut)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, c1, listed[0]["id"])

	env.mustRun(t, "move", "Comment", c1, "--context-type", "Post", "--context-id", p2)
	assert.Empty(t, ids(env.mustRun(t, "get", "Post", p1)["comments"]))
	assert.Equal(t, []string{c1}, ids(env.mustRun(t, "get", "Post", p2)["comments"]))

	c2 := env.mustRun(t, "create", "Comment", "body=via shortcut", "post="+p2)
	assert.Equal(t, p2, c2["post"])
	assert.ElementsMatch(t, []string{c1, c2["id"].(string)}, ids(env.mustRun(t, "get", "Post", p2)["comments"]))

	env.mustRun(t, "delete", "Comment", c1)
	assert.Equal(t, []string{c2["id"].(string)}, ids(env.mustRun(t, "get", "Post", p2)["comments"]))

	exportDir := t.TempDir()
	out, errOut, code = env.run(t, "export", "--dir", exportDir)
	require.Equal(t, exitSuccess, code, errOut)
	assert.Contains(t, out, "Post.jsonl")
	data, err := os.ReadFile(filepath.Join(exportDir, "Comment.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))

	fresh := newCLIEnv(t)
	imported := fresh.mustRun(t, "import", "--dir", exportDir)
	assert.EqualValues(t, 3, imported["imported"])
	assert.Equal(t, []string{c2["id"].(string)}, ids(fresh.mustRun(t, "get", "Post", p2)["comments"]))
}

func TestCommandErrors(t *testing.T) {
	env := newCLIEnv(t)
	post := env.mustRun(t, "create", "Post")["id"].(string)

	tests := []struct {
		name    string
		args    []string
		code    int
		message string
	}{
		{
			name:    "missing parent",
			args:    []string{"create", "Comment", "--context-type", "Post", "--context-id", "ghost"},
			code:    exitUserError,
			message: "Post not found",
		},
		{
			name:    "invalid context type",
			args:    []string{"create", "Comment", "--context-type", "Video", "--context-id", post},
			code:    exitUserError,
			message: types.MessageInvalidContextType,
		},
		{
			name:    "unknown model",
			args:    []string{"get", "Video", "x"},
			code:    exitUserError,
			message: "model not found",
		},
		{
			name:    "missing document",
			args:    []string{"get", "Post", "nope"},
			code:    exitUserError,
			message: "not found",
		},
		{
			name:    "move without target",
			args:    []string{"move", "Comment", "x"},
			code:    exitUserError,
			message: "--context-type and --context-id are required",
		},
		{
			name:    "bad assignment",
			args:    []string{"create", "Post", "title"},
			code:    exitUserError,
			message: "expected key=value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := env.run(t, tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, errOut, tt.message)
		})
	}

	assert.Empty(t, ids(env.mustRun(t, "get", "Post", post)["comments"]), "failed creates leave the parent untouched")
}

func TestLoadConfig(t *testing.T) {
	t.Run("writes defaults on first run", func(t *testing.T) {
		t.Setenv("CONTEXTREF_BACKEND", "")
		dir := filepath.Join(t.TempDir(), "cfg")
		cfg, err := loadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, types.BackendSQLite, cfg.Backend)
		assert.Equal(t, defaultLogLevel, cfg.LogLevel)
		require.Len(t, cfg.Models, 3)
		require.NotNil(t, cfg.Models[2].Context)
		assert.Equal(t, []string{"Post", "Article"}, cfg.Models[2].Context.ContextTypes)
		assert.Nil(t, cfg.Models[0].Context)
	})

	t.Run("reads declared models", func(t *testing.T) {
		t.Setenv("CONTEXTREF_BACKEND", "")
		dir := t.TempDir()
		content := `backend: memory
models:
  - name: Video
  - name: Note
    fields: [text]
    context:
      required: true
      context_types: [Video]
      camel_case: true
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, configFileExt), []byte(content), 0o644))

		cfg, err := loadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, types.BackendMemory, cfg.Backend)
		require.Len(t, cfg.Models, 2)
		note := cfg.Models[1]
		assert.Equal(t, []string{"text"}, note.Fields)
		require.NotNil(t, note.Context)
		assert.True(t, note.Context.Required)
		assert.True(t, note.Context.CamelCase)
		assert.Equal(t, []string{"Video"}, note.Context.ContextTypes)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, configFileExt), []byte("backend: sqlite\n"), 0o644))
		t.Setenv("CONTEXTREF_BACKEND", "memory")

		cfg, err := loadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, types.BackendMemory, cfg.Backend)
	})
}

func TestExportNeedsSQLite(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("CONTEXTREF_BACKEND", "memory")

	_, errOut, code := env.run(t, "export", "--dir", t.TempDir())
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, "does not support export")
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"title=hello", "count=3", "tags=[\"a\"]", "empty="}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Fields{
		"title": "hello",
		"count": float64(3),
		"tags":  []any{"a"},
		"empty": "",
	}, got)

	_, err = parseAssignments([]string{"=x"}, nil)
	var usage *usageError
	assert.ErrorAs(t, err, &usage)
}

func TestParseAssignmentsKeepsContextKeysRaw(t *testing.T) {
	env := newCLIEnv(t)
	a := &app{flags: rootFlags{configDir: env.configDir, dataDir: env.dataDir}}
	ctx := context.Background()
	require.NoError(t, a.open(ctx))
	t.Cleanup(func() { _ = a.close(ctx) })

	got, err := parseAssignments(
		[]string{"post=123", "article=7", "context_id=42", "context_type=Post", "score=3"},
		a.contextKeys(ctx, "Comment"),
	)
	require.NoError(t, err)
	assert.Equal(t, types.Fields{
		"post":         "123",
		"article":      "7",
		"context_id":   "42",
		"context_type": "Post",
		"score":        float64(3),
	}, got)

	got, err = parseAssignments([]string{"title=1"}, a.contextKeys(ctx, "Post"))
	require.NoError(t, err)
	assert.Equal(t, types.Fields{"title": float64(1)}, got)
}
