// Package progression maps accumulated experience to levels and rarity
// tiers to experience rewards.
package progression

import "errors"

// XPPerLevel is flat; the design uses no growth curve.
const XPPerLevel = 100

var ErrUnknownRarity = errors.New("unknown rarity")

// LevelFromXP returns floor(xp/100)+1, clamped so the level is at least 1.
func LevelFromXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// XPWithinLevel returns the experience accumulated inside the given level.
func XPWithinLevel(xp, level int) int {
	return xp - (level-1)*XPPerLevel
}

// XPForStars returns the experience awarded for releasing one copy of a
// character of the given rarity tier.
func XPForStars(stars int) (int, error) {
	switch stars {
	case 3:
		return 15, nil
	case 4:
		return 100, nil
	case 5:
		return 1500, nil
	default:
		return 0, ErrUnknownRarity
	}
}
