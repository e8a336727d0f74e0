package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/agbru/besselcalc/internal/errors"
)

func tempFiles(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	dir := t.TempDir()
	stdout, err := os.Create(filepath.Join(dir, "stdout"))
	if err != nil {
		t.Fatal(err)
	}
	stderr, err := os.Create(filepath.Join(dir, "stderr"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		stdout.Close()
		stderr.Close()
	})
	return stdout, stderr
}

func contents(t *testing.T, f *os.File) string {
	t.Helper()
	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRunExitCodes(t *testing.T) {
	t.Run("Version", func(t *testing.T) {
		stdout, stderr := tempFiles(t)
		if code := run([]string{"besselcalc", "--version"}, stdout, stderr); code != apperrors.ExitSuccess {
			t.Errorf("exit code = %d", code)
		}
		if !strings.HasPrefix(contents(t, stdout), "besselcalc ") {
			t.Errorf("stdout = %q", contents(t, stdout))
		}
	})

	t.Run("Help", func(t *testing.T) {
		stdout, stderr := tempFiles(t)
		if code := run([]string{"besselcalc", "-h"}, stdout, stderr); code != apperrors.ExitSuccess {
			t.Errorf("exit code = %d", code)
		}
	})

	t.Run("Configuration error", func(t *testing.T) {
		stdout, stderr := tempFiles(t)
		if code := run([]string{"besselcalc", "-lmax", "-1"}, stdout, stderr); code != apperrors.ExitErrorConfig {
			t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorConfig)
		}
		if !strings.Contains(contents(t, stderr), "Configuration error") {
			t.Errorf("stderr = %q", contents(t, stderr))
		}
	})

	t.Run("Quiet comparison", func(t *testing.T) {
		stdout, stderr := tempFiles(t)
		code := run([]string{"besselcalc", "-x", "1", "-lmax", "8", "-q", "-no-color"}, stdout, stderr)
		if code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d\n%s", code, contents(t, stderr))
		}
		if !strings.HasPrefix(contents(t, stdout), "1 down=") {
			t.Errorf("stdout = %q", contents(t, stdout))
		}
	})
}
