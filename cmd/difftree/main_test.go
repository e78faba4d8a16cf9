package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string, dirs ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	for name, content := range files {
		full := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	noConfig := filepath.Join(t.TempDir(), "none.yaml")
	code := execute(context.Background(), append([]string{"--config", noConfig}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLI_ReportsDifferences(t *testing.T) {
	a := writeTree(t, map[string]string{"x/a.txt": "hello", "only_a.txt": "a"})
	b := writeTree(t, map[string]string{"x/a.txt": "world"}, "only_b")

	code, out, errOut := runCLI(t, "-1", a, "-2", b)
	require.Equal(t, exitOK, code, errOut)

	assert.Contains(t, out, a+": 1 dirs, 2 files\n")
	assert.Contains(t, out, b+": 2 dirs, 1 files\n")
	assert.Contains(t, out, "common_dir x\n")
	assert.Contains(t, out, "missing_dir only_b\n")
	assert.Contains(t, out, "exclusive_file only_a.txt\n")
	assert.Contains(t, out, "common_file x/a.txt\n")
	assert.Contains(t, out, "diff_file x/a.txt\n")
	assert.Empty(t, errOut)
}

func TestCLI_PositionalArguments(t *testing.T) {
	a := writeTree(t, map[string]string{"f": "1"})
	b := writeTree(t, map[string]string{"f": "1"})

	code, flagOut, _ := runCLI(t, "-1", a, "-2", b)
	require.Equal(t, exitOK, code)
	code, argOut, _ := runCLI(t, a, b)
	require.Equal(t, exitOK, code)

	assert.Equal(t, flagOut, argOut)
	assert.NotContains(t, argOut, "diff_file")
}

func TestCLI_ReverseMatchesSwappedArguments(t *testing.T) {
	p := writeTree(t, map[string]string{"a": "1", "common": "x", "d/e": ""}, "pd")
	q := writeTree(t, map[string]string{"b": "2", "common": "y"}, "qd")

	code, reversed, _ := runCLI(t, "-r", "-1", p, "-2", q)
	require.Equal(t, exitOK, code)
	code, swapped, _ := runCLI(t, "-1", q, "-2", p)
	require.Equal(t, exitOK, code)

	assert.Equal(t, swapped, reversed)
	assert.True(t, strings.HasPrefix(reversed, q+":"), reversed)
}

func TestCLI_NonPositiveBlockSizeFallsBack(t *testing.T) {
	a := writeTree(t, map[string]string{"f": "same", "g": "one"})
	b := writeTree(t, map[string]string{"f": "same", "g": "two"})

	code, want, _ := runCLI(t, a, b)
	require.Equal(t, exitOK, code)

	for _, size := range []string{"0", "-5", "-8M"} {
		code, got, errOut := runCLI(t, "--block-size="+size, a, b)
		require.Equal(t, exitOK, code, "size %s: %s", size, errOut)
		assert.Equal(t, want, got, "size %s", size)
	}
}

func TestCLI_MissingRoot(t *testing.T) {
	a := writeTree(t, map[string]string{"f": "1"})
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	code, out, errOut := runCLI(t, "-1", a, "-2", missing)

	assert.Equal(t, exitInvalidRoot, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, missing+" is not a directory")
}

func TestCLI_RootIsAFile(t *testing.T) {
	a := writeTree(t, map[string]string{"f": "1"})

	code, out, errOut := runCLI(t, filepath.Join(a, "f"), a)

	assert.Equal(t, exitInvalidRoot, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, filepath.Join(a, "f")+" is not a directory")
}

func TestCLI_AlgorithmsAgree(t *testing.T) {
	a := writeTree(t, map[string]string{"f": "same", "g": "one"})
	b := writeTree(t, map[string]string{"f": "same", "g": "two"})

	for _, args := range [][]string{{"-5"}, {"-a", "sha512"}, {"-a", "blake3"}, {"--algorithm=xxh64"}, {"-w", "4"}} {
		code, out, errOut := runCLI(t, append(args, a, b)...)
		require.Equal(t, exitOK, code, "%v: %s", args, errOut)
		assert.Contains(t, out, "diff_file g\n", "%v", args)
		assert.NotContains(t, out, "diff_file f\n", "%v", args)
	}
}

func TestCLI_UsageErrors(t *testing.T) {
	a := writeTree(t, nil)

	code, _, errOut := runCLI(t, "-1", a)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "required")

	code, _, _ = runCLI(t, a)
	assert.Equal(t, exitUsage, code)

	code, _, errOut = runCLI(t, "-a", "md5", a, a)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "unsupported hash algorithm")
}

func TestCLI_ConfigFile(t *testing.T) {
	a := writeTree(t, map[string]string{"keep": "1", "skip.log": "a"})
	b := writeTree(t, map[string]string{"keep": "1", "skip.log": "b"})

	cfgPath := filepath.Join(t.TempDir(), "difftree.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("exclude:\n  - \"*.log\"\nalgorithm: sha512\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--config", cfgPath, a, b}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	assert.NotContains(t, stdout.String(), "skip.log")
	assert.Contains(t, stdout.String(), "common_file keep\n")
}

func TestCLI_StrictTypesAndList(t *testing.T) {
	a := writeTree(t, map[string]string{"p": "file"})
	b := writeTree(t, nil, "p")

	code, out, _ := runCLI(t, "--strict-types", "--list", a, b)
	require.Equal(t, exitOK, code)

	assert.Contains(t, out, a+": 0 dirs, 1 files\nfile p\n")
	assert.Contains(t, out, b+": 1 dirs, 0 files\ndir p\n")
	assert.Contains(t, out, "type_mismatch p\n")
}

func TestCLI_HashFailurePrintsPathAndNoReport(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root can read unreadable files")
	}
	a := writeTree(t, map[string]string{"secret": "1"})
	b := writeTree(t, map[string]string{"secret": "1"})
	require.NoError(t, os.Chmod(filepath.Join(a, "secret"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(a, "secret"), 0o644) })

	code, out, errOut := runCLI(t, a, b)

	assert.Equal(t, exitFailure, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "secret: permission denied")
}

func TestCLI_ProgressOnStderr(t *testing.T) {
	a := writeTree(t, map[string]string{"x/one": "1", "two": "2", "only_a": ""})
	b := writeTree(t, map[string]string{"x/one": "1", "two": "3"})

	code, plain, _ := runCLI(t, a, b)
	require.Equal(t, exitOK, code)

	code, out, errOut := runCLI(t, "--progress", a, b)
	require.Equal(t, exitOK, code, errOut)

	assert.Equal(t, plain, out, "progress must not touch the report")
	assert.Contains(t, errOut, "100% (2/2)")
	assert.True(t, strings.HasSuffix(errOut, "\n"), errOut)
}
