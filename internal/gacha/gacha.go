// Package gacha implements the weighted character draw used by the banner.
package gacha

import (
	"math/rand"
	"sync"
	"time"
)

// Banner pools. These are static configuration, not per-user state; the
// valid collection key set is exactly the union of the three pools plus
// the "Pomodoro" item awarded by completed focus sessions.
var (
	FiveStarPool = []string{"King", "Angel", "Dragon"}

	FourStarPool = []string{"Snow", "Prince", "Moon", "Autumn"}

	ThreeStarPool = []string{
		"White",
		"Brown",
		"Orange",
		"Black",
		"Cream",
		"Gray",
		"Tan",
		"Beige",
	}
)

// Draw probabilities are cumulative half-open intervals over [0,1):
// r < 0.006 is 5-star, r < 0.056 is 4-star, everything else 3-star.
const (
	fiveStarThreshold = 0.006
	fourStarThreshold = 0.056
)

type Draw struct {
	Name  string
	Stars int
}

// Engine draws from the banner pools. Safe for concurrent use.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewEngine() *Engine {
	return &Engine{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewEngineWithSource injects a deterministic source, used by tests.
func NewEngineWithSource(src rand.Source) *Engine {
	return &Engine{rng: rand.New(src)}
}

// DrawOne draws a single character. The engine is pure with respect to user
// state; persistence of the result is the caller's concern.
func (e *Engine) DrawOne() Draw {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.rng.Float64()
	switch {
	case r < fiveStarThreshold:
		return Draw{
			Name:  FiveStarPool[e.rng.Intn(len(FiveStarPool))],
			Stars: 5,
		}
	case r < fourStarThreshold:
		return Draw{
			Name:  FourStarPool[e.rng.Intn(len(FourStarPool))],
			Stars: 4,
		}
	default:
		return Draw{
			Name:  ThreeStarPool[e.rng.Intn(len(ThreeStarPool))],
			Stars: 3,
		}
	}
}

// DrawMany performs n independent draws. There is no pity mechanic.
func (e *Engine) DrawMany(n int) []Draw {
	draws := make([]Draw, n)
	for i := range draws {
		draws[i] = e.DrawOne()
	}
	return draws
}

// StarsOf reports the rarity tier a character belongs to, and whether the
// name is a banner character at all.
func StarsOf(name string) (int, bool) {
	for _, n := range FiveStarPool {
		if n == name {
			return 5, true
		}
	}
	for _, n := range FourStarPool {
		if n == name {
			return 4, true
		}
	}
	for _, n := range ThreeStarPool {
		if n == name {
			return 3, true
		}
	}
	return 0, false
}
