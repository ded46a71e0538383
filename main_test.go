package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var opts cliOptions
	fs := newFlagSet(&opts)
	require.NoError(t, fs.Parse(args))
	var out bytes.Buffer
	err := run(opts, fs.Changed, &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return out.String(), err
}

func TestParseFlagsHelp(t *testing.T) {
	var opts cliOptions
	var usage bytes.Buffer
	_, ok, err := parseFlags([]string{"--help"}, &opts, &usage)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, usage.String(), "--width")

	_, ok, err = parseFlags([]string{"--no-such-flag"}, &opts, io.Discard)
	assert.Error(t, err)
	assert.False(t, ok)

	fs, ok, err := parseFlags([]string{"--text", "hi", "--wrap"}, &opts, io.Discard)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, fs.Changed("wrap"))
	assert.Equal(t, "hi", opts.text)
}

func TestRunTextToStdout(t *testing.T) {
	out, err := runArgs(t, "--text", "Hello {name}, welcome back", "--data", `{"name":"Ada"}`, "--width", "12", "--wrap")
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada,\nwelcome back\n", out)
}

func TestRunTruncateOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "label.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("wrap = true\nmax_width = 8\ntext_align = \"end\"\n"), 0o644))

	out, err := runArgs(t, "--config", cfgPath, "--text", "abcdefghijkl", "--truncate", "--ellipsis", "~")
	require.NoError(t, err)
	assert.Equal(t, "abcdefg~\n", out)
}

func TestRunWritesFilesAndDebug(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"label.svg", "label.pdf", "label.png"} {
		path := filepath.Join(dir, "out", name)
		debug := filepath.Join(dir, "debug", name+".json")
		_, err := runArgs(t, "--text", "[bold]Q3[/] revenue", "--out", path, "--debug", debug, "--width", "160", "--wrap")
		require.NoError(t, err, name)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
		data, err := os.ReadFile(debug)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"text": "Q3 revenue"`)
	}
}

func TestRunErrors(t *testing.T) {
	_, err := runArgs(t)
	assert.Error(t, err)

	_, err = runArgs(t, "--text", "a", "--in", "b.txt")
	assert.Error(t, err)

	_, err = runArgs(t, "--text", "a", "--format", "svg")
	assert.Error(t, err, "svg 需要 --out")

	_, err = runArgs(t, "--text", "a", "--align", "diagonal")
	assert.Error(t, err)

	_, err = runArgs(t, "--text", "a", "--data", "{broken")
	assert.Error(t, err)

	_, err = runArgs(t, "--text", "a", "--format", "gif", "--out", filepath.Join(t.TempDir(), "a.gif"))
	assert.Error(t, err)
}

func TestResolveFormat(t *testing.T) {
	assert.EqualValues(t, "pdf", resolveFormat("", "x/label.PDF"))
	assert.EqualValues(t, "text", resolveFormat("", ""))
	assert.EqualValues(t, "png", resolveFormat("PNG", "label.svg"))
}
