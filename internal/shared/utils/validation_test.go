package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSessionID(t *testing.T) {
	for _, id := range []string{"s1", "pane_left-2", "repo/main:1", "ws:feature/login"} {
		assert.NoError(t, ValidateSessionID(id, "session_id"), id)
	}
	for _, id := range []string{"", "a b", "a.b", "a\x00b", "a\nb", strings.Repeat("a", MaxIDLength+1)} {
		assert.Error(t, ValidateSessionID(id, "session_id"), id)
	}
}

func TestValidateToolID(t *testing.T) {
	assert.NoError(t, ValidateToolID("terminal.create_session", "tool_id", true))
	assert.Error(t, ValidateToolID("terminal/create", "tool_id", true))
	assert.Error(t, ValidateToolID("", "tool_id", true))
}

func TestValidateBranch(t *testing.T) {
	assert.NoError(t, ValidateBranch("feature/login", "branch_name"))
	assert.Error(t, ValidateBranch("--force", "branch_name"))
	assert.Error(t, ValidateBranch("", "branch_name"))
}

func TestValidateDimension(t *testing.T) {
	assert.NoError(t, ValidateDimension(80, "cols"))
	assert.NoError(t, ValidateDimension(MaxDimension, "rows"))
	assert.Error(t, ValidateDimension(0, "cols"))
	assert.Error(t, ValidateDimension(-1, "rows"))
	assert.Error(t, ValidateDimension(MaxDimension+1, "rows"))
}
