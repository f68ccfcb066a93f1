package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 20, config.WorkMinutes)
	assert.Equal(t, 23*time.Second, config.BreakDuration)
}

func TestClampWorkMinutes(t *testing.T) {
	assert.Equal(t, 0, ClampWorkMinutes(-1))
	assert.Equal(t, 0, ClampWorkMinutes(0))
	assert.Equal(t, 30, ClampWorkMinutes(30))
	assert.Equal(t, 59, ClampWorkMinutes(59))
	assert.Equal(t, 59, ClampWorkMinutes(60))
}
