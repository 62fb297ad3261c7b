package gacha

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStarsOf(t *testing.T) {
	tests := []struct {
		name          string
		expectedStars int
		expectedOK    bool
	}{
		{"King", 5, true},
		{"Angel", 5, true},
		{"Dragon", 5, true},
		{"Snow", 4, true},
		{"Autumn", 4, true},
		{"White", 3, true},
		{"Beige", 3, true},
		{"Pomodoro", 0, false},
		{"", 0, false},
		{"king", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stars, ok := StarsOf(tt.name)
			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedStars, stars)
		})
	}
}

func TestDrawMany_Length(t *testing.T) {
	engine := NewEngineWithSource(rand.NewSource(1))

	assert.Len(t, engine.DrawMany(1), 1)
	assert.Len(t, engine.DrawMany(10), 10)
}

func TestDraw_NamesBelongToClaimedTier(t *testing.T) {
	engine := NewEngineWithSource(rand.NewSource(7))

	for _, d := range engine.DrawMany(10000) {
		stars, ok := StarsOf(d.Name)
		require.True(t, ok, "drew unknown character %q", d.Name)
		require.Equal(t, stars, d.Stars, "character %q reported wrong tier", d.Name)
	}
}

func TestDraw_Distribution(t *testing.T) {
	engine := NewEngineWithSource(rand.NewSource(42))

	const n = 100000
	counts := map[int]int{}
	for _, d := range engine.DrawMany(n) {
		counts[d.Stars]++
	}

	// Expected frequencies are 0.6%, 5.0% and 94.4%. Bounds are several
	// standard deviations wide, so a correct implementation with this
	// seed cannot flake.
	assert.InDelta(t, 600, counts[5], 150, "5-star frequency off")
	assert.InDelta(t, 5000, counts[4], 450, "4-star frequency off")
	assert.InDelta(t, 94400, counts[3], 550, "3-star frequency off")
	assert.Equal(t, n, counts[3]+counts[4]+counts[5])
}
