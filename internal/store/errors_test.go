package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsQueryFailure(t *testing.T) {
	t.Parallel()

	assert.True(t, IsQueryFailure(ErrQueryFailed))
	assert.True(t, IsQueryFailure(fmt.Errorf("%w: undefined table", ErrQueryFailed)))
	assert.False(t, IsQueryFailure(ErrNotFound))
	assert.False(t, IsQueryFailure(errors.New("connection refused")))
	assert.False(t, IsQueryFailure(nil))
}
