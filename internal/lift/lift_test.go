package lift_test

import (
	"testing"

	"github.com/ironcycle/ironcycle/internal/lift"
)

func TestParse(t *testing.T) {
	t.Parallel()
	for _, l := range lift.All {
		parsed, err := lift.Parse(string(l))
		if err != nil {
			t.Errorf("Parse(%q) error: %v", l, err)
		}
		if parsed != l {
			t.Errorf("Parse(%q) = %v, want %v", l, parsed, l)
		}
	}
	if _, err := lift.Parse("curl"); err == nil {
		t.Error("Parse(curl) succeeded, want error")
	}
}

func TestIncrement(t *testing.T) {
	t.Parallel()
	tests := []struct {
		lift lift.Lift
		want float64
	}{
		{lift.Squat, 10},
		{lift.Deadlift, 10},
		{lift.BenchPress, 5},
		{lift.Press, 5},
	}
	for _, tt := range tests {
		if got := tt.lift.Increment(); got != tt.want {
			t.Errorf("%s increment = %v, want %v", tt.lift, got, tt.want)
		}
	}
}

func TestTableWeek(t *testing.T) {
	t.Parallel()
	tests := []struct {
		weekType lift.WeekType
		want     int
	}{
		{lift.Week5s, 1},
		{lift.Week3s, 2},
		{lift.Week531, 3},
		{lift.WeekDeload, 4},
	}
	for _, tt := range tests {
		if got := tt.weekType.TableWeek(); got != tt.want {
			t.Errorf("%s table week = %d, want %d", tt.weekType, got, tt.want)
		}
	}
}

func TestMainWork(t *testing.T) {
	t.Parallel()
	tests := []struct {
		category lift.SetCategory
		want     bool
	}{
		{lift.SetWorking, true},
		{lift.SetAMRAP, true},
		{lift.SetWarmup, false},
		{lift.SetAccessory, false},
	}
	for _, tt := range tests {
		if got := tt.category.MainWork(); got != tt.want {
			t.Errorf("%s MainWork() = %v, want %v", tt.category, got, tt.want)
		}
	}
}
