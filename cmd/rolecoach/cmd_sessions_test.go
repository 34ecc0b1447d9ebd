package main

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/mentorinc/rolecoach/internal/models"
	"github.com/mentorinc/rolecoach/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsList_Empty(t *testing.T) {
	dir := newProject(t)

	out, err := runCLI(t, dir, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions.")
}

func TestSessions_AppendShowList(t *testing.T) {
	dir := newProject(t)

	_, err := runCLI(t, dir, "new", "--scenario", "rm")
	require.NoError(t, err)
	sessions := projectSessions(t, dir)
	require.Len(t, sessions, 1)
	id := sessions[0].ID

	out, err := runCLI(t, dir, "sessions", "append", id, "Good", "morning,", "how", "can", "I", "help?")
	require.NoError(t, err)
	assert.Contains(t, out, "now has 1 turns")

	_, err = runCLI(t, dir, "sessions", "append", "--role", "counterpart", id, "I", "want", "to", "open", "an", "account.")
	require.NoError(t, err)

	out, err = runCLI(t, dir, "sessions", "show", id[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "Relationship Manager: Good morning, how can I help?")
	assert.Contains(t, out, "Client: I want to open an account.")
	assert.Contains(t, out, "["+models.ScenarioRelationshipManager.Description()+"]")

	out, err = runCLI(t, dir, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id[:8])
	assert.Contains(t, out, "Relationship Manager")
}

func TestSessionsShow_JSONIsScoreable(t *testing.T) {
	dir := newProject(t)

	_, err := runCLI(t, dir, "new", "--scenario", "pm")
	require.NoError(t, err)
	id := projectSessions(t, dir)[0].ID

	out, err := runCLI(t, dir, "sessions", "show", "--json", id)
	require.NoError(t, err)

	var tf session.TranscriptFile
	require.NoError(t, json.Unmarshal([]byte(out), &tf))
	assert.Equal(t, models.ScenarioPeopleManager, tf.Scenario)
	require.Len(t, tf.Messages, 1)
	assert.Equal(t, models.RoleSystem, tf.Messages[0].Role)
}

func TestSessionsShow_NotFound(t *testing.T) {
	dir := newProject(t)

	_, err := runCLI(t, dir, "sessions", "show", "missing")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestSessionsAppend_UnknownRole(t *testing.T) {
	dir := newProject(t)

	_, err := runCLI(t, dir, "new")
	require.NoError(t, err)
	id := projectSessions(t, dir)[0].ID

	_, err = runCLI(t, dir, "sessions", "append", "--role", "narrator", id, "hello")
	require.Error(t, err)
}

func TestSessionsClear(t *testing.T) {
	dir := newProject(t)

	_, err := runCLI(t, dir, "new")
	require.NoError(t, err)

	// Non-interactive without --force refuses.
	_, err = runCLI(t, dir, "sessions", "clear")
	require.Error(t, err)
	assert.Len(t, projectSessions(t, dir), 1)

	_, err = runCLI(t, dir, "sessions", "clear", "--force")
	require.NoError(t, err)
	assert.Empty(t, projectSessions(t, dir))
}

func TestSessionsClear_Confirmed(t *testing.T) {
	dir := newProject(t)

	orig := promptConfirm
	t.Cleanup(func() { promptConfirm = orig })
	promptConfirm = func(io.Reader, io.Writer, string) bool { return true }

	_, err := runCLI(t, dir, "new")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "sessions", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Sessions cleared.")
	assert.Empty(t, projectSessions(t, dir))
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want models.Role
	}{
		{"operator", models.RoleOperator},
		{"user", models.RoleOperator},
		{"", models.RoleOperator},
		{"Counterpart", models.RoleCounterpart},
		{"assistant", models.RoleCounterpart},
	}
	for _, tt := range tests {
		got, err := parseRole(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseRole("system")
	assert.Error(t, err)
}
