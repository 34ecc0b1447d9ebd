package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mentorinc/rolecoach/internal/session"
	"github.com/stretchr/testify/require"
)

// newProject creates a project directory whose config selects the offline
// mock judge.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeProjectFile(t, dir, ".rolecoach.yaml", "judge:\n  engine: mock\n")
	t.Setenv("ROLECOACH_JUDGE_ENGINE", "")
	t.Setenv("ROLECOACH_SESSIONS_DIR", "")
	t.Setenv("ROLECOACH_QUOTA_DB", "")
	return dir
}

func writeProjectFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// runCLI runs the root command against dir and returns combined output.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func projectSessions(t *testing.T, dir string) []*session.Session {
	t.Helper()
	sessions, err := session.NewStore(filepath.Join(dir, ".rolecoach", "sessions")).List()
	require.NoError(t, err)
	return sessions
}
