package errors

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorKeepsCause(t *testing.T) {
	err := NewStoreError("query", "trades", "", sql.ErrConnDone)

	assert.True(t, Is(err, sql.ErrConnDone))
	assert.Equal(t, "store query trades: sql: connection is already closed", err.Error())
}

func TestNotFoundMatchesSentinel(t *testing.T) {
	err := Wrap(NotFound("strategy", "s1"), "recompute")

	assert.True(t, Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "[s1]")

	var se *StoreError
	assert.True(t, As(err, &se))
	assert.Equal(t, "strategy", se.Entity)
}

func TestValidationKinds(t *testing.T) {
	assert.True(t, Is(InvalidTrade("quantity", 0.0, "must be positive"), ErrInvalidTrade))
	assert.True(t, Is(InvalidJournal("stressLevel", 11, "must be 1-10"), ErrInvalidJournal))
	assert.False(t, Is(NewValidationError("x", 1, "bad"), ErrInvalidTrade))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ctx"))
	assert.NoError(t, Wrapf(nil, "ctx %d", 1))
}
