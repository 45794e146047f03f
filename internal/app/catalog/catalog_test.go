package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		code   string
		want   string
		wantOK bool
	}{
		{"plumbing_4", "Plumbing Level 4", true},
		{"PLUMBING_4", "Plumbing Level 4", true},
		{"  elec_3 ", "Electrical Installation Level 3", true},
		{"food-bev-5", "Food and Beverage Production Level 5", true},
		{"carpentry_3", "Carpentry Level 3", true},
		{"carpentry_level_3", "Carpentry Level 3", true},
		{"motor_vehicle_mechanics_6", "Motor Vehicle Mechanics Level 6", true},
		{"journalism", "Journalism", true},
		{"", "", false},
		{"  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, ok := CanonicalName(tt.code)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAliasesSortedCopy(t *testing.T) {
	list := Aliases()
	assert.Len(t, list, len(aliases))
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].CourseCode, list[i].CourseCode)
	}

	list[0].ProgramName = "mutated"
	again := Aliases()
	assert.NotEqual(t, "mutated", again[0].ProgramName)
}
