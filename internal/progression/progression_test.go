package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromXP(t *testing.T) {
	tests := []struct {
		xp       int
		expected int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{101, 2},
		{250, 3},
		{1500, 16},
		{-5, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LevelFromXP(tt.xp), "xp=%d", tt.xp)
	}

	for xp := 0; xp <= 50; xp++ {
		assert.Equal(t, xp+1, LevelFromXP(xp*100))
	}
}

func TestXPWithinLevel(t *testing.T) {
	assert.Equal(t, 0, XPWithinLevel(0, 1))
	assert.Equal(t, 99, XPWithinLevel(99, 1))
	assert.Equal(t, 5, XPWithinLevel(105, 2))
	assert.Equal(t, 50, XPWithinLevel(250, 3))
}

func TestXPForStars(t *testing.T) {
	tests := []struct {
		stars      int
		expected   int
		expectsErr bool
	}{
		{3, 15, false},
		{4, 100, false},
		{5, 1500, false},
		{2, 0, true},
		{6, 0, true},
		{0, 0, true},
		{-1, 0, true},
	}

	for _, tt := range tests {
		xp, err := XPForStars(tt.stars)
		if tt.expectsErr {
			assert.ErrorIs(t, err, ErrUnknownRarity, "stars=%d", tt.stars)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, xp, "stars=%d", tt.stars)
	}
}
