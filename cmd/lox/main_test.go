package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeSource(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expr.lox")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestRootFileFlag(t *testing.T) {
	out, err := execute(t, "", "--file", writeSource(t, "-123 * (45)"))
	require.NoError(t, err)
	require.Equal(t, "(* (- 123) (group 45))\n", out)
}

func TestRootWithoutFilePrintsHelp(t *testing.T) {
	out, err := execute(t, "")
	require.NoError(t, err)
	require.Contains(t, out, "Usage:")
}

func TestParseFormats(t *testing.T) {
	path := writeSource(t, "1 == 2")

	out, err := execute(t, "", "parse", path)
	require.NoError(t, err)
	require.Equal(t, "(== 1 2)\n", out)

	out, err = execute(t, "", "parse", "--format", "json", path)
	require.NoError(t, err)
	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	require.Equal(t, "Binary", tree["type"])

	out, err = execute(t, "", "parse", "--format", "yaml", path)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal([]byte(out), &tree))
	require.Equal(t, "==", tree["operator"])
}

func TestParseStdinAndErrors(t *testing.T) {
	out, err := execute(t, "true != nil", "parse", "-")
	require.NoError(t, err)
	require.Equal(t, "(!= true nil)\n", out)

	_, err = execute(t, "(1", "parse", "-")
	require.ErrorContains(t, err, "parse error")

	_, err = execute(t, "1", "parse", "--format", "xml", "-")
	require.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "", "parse", filepath.Join(t.TempDir(), "missing.lox"))
	require.Error(t, err)
}

func TestScan(t *testing.T) {
	out, err := execute(t, "a + 1", "scan", "-")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "1:0\tIdentifier\t\"a\"\ta", lines[0])
	require.Equal(t, "1:2\tPlus\t\"+\"", lines[1])
	require.True(t, strings.HasPrefix(lines[3], "1:5\tEOF"))

	out, err = execute(t, "1 +", "scan", "--format", "json", "-")
	require.NoError(t, err, "scanning does not require a valid expression")
	var tokens []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tokens))
	require.Len(t, tokens, 3)
}

func TestStrictFlag(t *testing.T) {
	_, err := execute(t, "1 @ 2", "scan", "-")
	require.NoError(t, err)

	_, err = execute(t, "1 @ 2", "--strict", "scan", "-")
	require.ErrorContains(t, err, "unexpected character")
}

func TestConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "lox.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("scanner:\n  strict: true\n"), 0o644))

	_, err := execute(t, "1 @ 2", "--config", cfgPath, "scan", "-")
	require.ErrorContains(t, err, "unexpected character")
}
