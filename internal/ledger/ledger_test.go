package ledger

import (
	"testing"
	"time"

	"pomtime/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestToday_FixedOffset(t *testing.T) {
	// 06:30 UTC is still the previous day in the fixed UTC-8 ledger zone.
	at := time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-09", Today(at))

	at = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10", Today(at))
}

func TestCredit(t *testing.T) {
	const (
		today     = "2025-03-10"
		yesterday = "2025-03-09"
	)

	tests := []struct {
		name          string
		state         model.DailyPoints
		proposed      int
		expectedGiven int
		expectedState model.DailyPoints
	}{
		{
			name:          "rollover resets the cap",
			state:         model.DailyPoints{Date: yesterday, PointsEarned: 40},
			proposed:      30,
			expectedGiven: 30,
			expectedState: model.DailyPoints{Date: today, PointsEarned: 30},
		},
		{
			name:          "truncation at the cap",
			state:         model.DailyPoints{Date: today, PointsEarned: 45},
			proposed:      20,
			expectedGiven: 5,
			expectedState: model.DailyPoints{Date: today, PointsEarned: 50},
		},
		{
			name:          "cap exhausted means zero award and no error",
			state:         model.DailyPoints{Date: today, PointsEarned: 50},
			proposed:      10,
			expectedGiven: 0,
			expectedState: model.DailyPoints{Date: today, PointsEarned: 50},
		},
		{
			name:          "rollover truncates an oversized award",
			state:         model.DailyPoints{Date: yesterday, PointsEarned: 0},
			proposed:      80,
			expectedGiven: 50,
			expectedState: model.DailyPoints{Date: today, PointsEarned: 50},
		},
		{
			name:          "fresh day awards in full",
			state:         model.DailyPoints{Date: today, PointsEarned: 0},
			proposed:      10,
			expectedGiven: 10,
			expectedState: model.DailyPoints{Date: today, PointsEarned: 10},
		},
		{
			name:          "check-in date carries over",
			state:         model.DailyPoints{Date: yesterday, PointsEarned: 12, LastCheckin: yesterday},
			proposed:      5,
			expectedGiven: 5,
			expectedState: model.DailyPoints{Date: today, PointsEarned: 5, LastCheckin: yesterday},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			given, state := Credit(tt.state, tt.proposed, today)
			assert.Equal(t, tt.expectedGiven, given)
			assert.Equal(t, tt.expectedState, state)
		})
	}
}

func TestCheckedInToday(t *testing.T) {
	today := "2025-03-10"

	assert.False(t, CheckedInToday(model.DailyPoints{}, today))
	assert.False(t, CheckedInToday(model.DailyPoints{LastCheckin: "2025-03-09"}, today))
	assert.True(t, CheckedInToday(model.DailyPoints{LastCheckin: today}, today))
}
