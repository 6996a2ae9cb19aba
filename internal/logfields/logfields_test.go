package logfields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, KeyError, Error(nil).Key)
}

func TestHelpersUseCanonicalKeys(t *testing.T) {
	assert.Equal(t, KeyPlanDate, PlanDate("2025-01-02").Key)
	assert.Equal(t, KeyReminder, Reminder("lunch").Key)
	assert.Equal(t, int64(42), Tokens(42).Value.Int64())
}
