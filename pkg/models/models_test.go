package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidLevel(t *testing.T) {
	for _, level := range AllLevels() {
		assert.True(t, IsValidLevel(level), level)
	}

	for _, level := range []string{"", "a1", "B3", "beginner", " C1"} {
		assert.False(t, IsValidLevel(level), level)
	}
}

func TestAllLevelsOrder(t *testing.T) {
	assert.Equal(t, []string{"A1", "A2", "B1", "B2", "C1", "C2"}, AllLevels())
}
