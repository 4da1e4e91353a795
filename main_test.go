package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvitoroc/gorule/bindings"
	"github.com/jvitoroc/gorule/eval"
	"github.com/jvitoroc/gorule/rule"
)

const rules = `IF (x > 0 AND z > 0) RETURN 1
IF (y > 0) RETURN 2
ELSE RETURN 0
`

func newFs(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()

	fs := memfs.New()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}

	return fs
}

func runCLI(t *testing.T, fs billy.Filesystem, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), fs, args, &stdout, &stderr)

	return stdout.String(), stderr.String(), err
}

func TestRun(t *testing.T) {
	fs := newFs(t, map[string]string{
		"rules.txt":   rules,
		"values.json": `{"x": 1, "y": 1, "z": 1}`,
		"nested.json": `{"input": {"x": -1, "y": -1, "z": -1}}`,
	})

	stdout, _, err := runCLI(t, fs, "-rules", "rules.txt", "-values", "values.json")
	require.NoError(t, err)
	assert.Equal(t, "2\n", stdout)

	stdout, _, err = runCLI(t, fs, "-rules", "rules.txt", "-values", "nested.json", "-path", "$.input")
	require.NoError(t, err)
	assert.Equal(t, "0\n", stdout)
}

func TestRunWithoutValues(t *testing.T) {
	fs := newFs(t, map[string]string{
		"missing.txt": "IF (IS_MISSING(x)) RETURN 5\nELSE RETURN 0",
		"rules.txt":   rules,
	})

	stdout, _, err := runCLI(t, fs, "-rules", "missing.txt")
	require.NoError(t, err)
	assert.Equal(t, "5\n", stdout)

	_, _, err = runCLI(t, fs, "-rules", "rules.txt")
	assert.ErrorIs(t, err, eval.ErrUnboundVariable)
}

func TestRunTrace(t *testing.T) {
	fs := newFs(t, map[string]string{
		"rules.txt":   rules,
		"values.json": `{"x": 1, "y": -1, "z": 1}`,
	})

	stdout, _, err := runCLI(t, fs, "-rules", "rules.txt", "-values", "values.json", "-trace")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "trace "))
	assert.Equal(t, []string{"1", "true", "1", "x", ">", "0", "AND", "z", ">", "0"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"2", "false", "2", "y", ">", "0"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"ELSE", "true", "0"}, strings.Fields(lines[4]))
	assert.Equal(t, "result: 1 (IF statement 1)", lines[5])
}

func TestRunTokens(t *testing.T) {
	fs := newFs(t, map[string]string{"rules.txt": "IF (x > 0) RETURN 1\nELSE RETURN 0"})

	stdout, _, err := runCLI(t, fs, "-rules", "rules.txt", "-tokens")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, []string{"if", `"IF"`, "1:1"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"number_literal", `"0"`, "2:13"}, strings.Fields(lines[10]))
}

func TestRunDebugLogging(t *testing.T) {
	fs := newFs(t, map[string]string{"rules.txt": "IF (IS_MISSING(x)) RETURN 5\nELSE RETURN 0"})

	_, stderr, err := runCLI(t, fs, "-rules", "rules.txt", "-debug")
	require.NoError(t, err)
	assert.Contains(t, stderr, "evaluated program")
}

func TestRunErrors(t *testing.T) {
	fs := newFs(t, map[string]string{
		"rules.txt":   rules,
		"broken.txt":  "IF (x > 0) RETURN 1",
		"deep.txt":    "IF ((((x > 0)))) RETURN 1\nELSE RETURN 0",
		"values.json": `{"x": "abc"}`,
	})

	_, stderr, err := runCLI(t, fs)
	assert.Error(t, err)
	assert.Contains(t, stderr, "Usage: gorule")

	_, _, err = runCLI(t, fs, "-rules", "nope.txt")
	assert.Error(t, err)

	_, _, err = runCLI(t, fs, "-rules", "broken.txt")
	assert.ErrorIs(t, err, rule.ErrEmptyOrInvalidInput)

	_, _, err = runCLI(t, fs, "-rules", "rules.txt", "-values", "values.json")
	assert.ErrorIs(t, err, bindings.ErrInvalidBindings)

	_, _, err = runCLI(t, fs, "-rules", "deep.txt", "-max-depth", "2")
	assert.ErrorIs(t, err, eval.ErrRecursionDepthExceeded)

	_, _, err = runCLI(t, fs, "-h")
	assert.True(t, errors.Is(err, flag.ErrHelp))
}
