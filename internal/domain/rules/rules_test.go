package rules

import (
	"testing"
	"time"
)

func TestNextToken(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		want     int
	}{
		{"empty day starts at one", nil, 1},
		{"sequential", []int{1, 2, 3}, 4},
		{"gaps from cancellations are not reused", []int{1, 3, 7}, 8},
		{"unordered input", []int{5, 2, 9, 1}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextToken(tt.existing)
			if got != tt.want {
				t.Errorf("NextToken(%v) = %d, want %d", tt.existing, got, tt.want)
			}
			for _, e := range tt.existing {
				if got == e {
					t.Errorf("NextToken(%v) returned already-issued token %d", tt.existing, got)
				}
			}
		})
	}
}

func TestWaitTimeMinutes(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		checkIn time.Time
		want    int
	}{
		{"just checked in", now, 0},
		{"partial minute floors", now.Add(-90 * time.Second), 1},
		{"forty five minutes", now.Add(-45 * time.Minute), 45},
		{"future check-in clamps to zero", now.Add(5 * time.Minute), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WaitTimeMinutes(tt.checkIn, now); got != tt.want {
				t.Errorf("WaitTimeMinutes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStayDurationDays(t *testing.T) {
	admitted := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		until time.Time
		want  int
	}{
		{"same day counts as one", admitted.Add(6 * time.Hour), 1},
		{"exactly one day", admitted.Add(24 * time.Hour), 1},
		{"partial second day rounds up", admitted.Add(25 * time.Hour), 2},
		{"week long stay", admitted.Add(7 * 24 * time.Hour), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StayDurationDays(admitted, tt.until); got != tt.want {
				t.Errorf("StayDurationDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAgeYears(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		dob  time.Time
		want int
	}{
		{"birthday passed", time.Date(1990, 1, 20, 0, 0, 0, 0, time.UTC), 35},
		{"birthday upcoming", time.Date(1990, 12, 1, 0, 0, 0, 0, time.UTC), 34},
		{"birthday today", time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC), 25},
		{"infant", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeYears(tt.dob, now); got != tt.want {
				t.Errorf("AgeYears = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStockStatus(t *testing.T) {
	tests := []struct {
		name             string
		current, minimum int
		want             string
	}{
		{"well stocked", 100, 20, StockHealthy},
		{"exactly double minimum is healthy", 40, 20, StockHealthy},
		{"between minimum and double is low", 39, 20, StockLow},
		{"exactly at minimum is low", 20, 20, StockLow},
		{"below minimum is critical", 19, 20, StockCritical},
		{"zero stock", 0, 20, StockCritical},
		{"no minimum set is always healthy", 0, 0, StockHealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StockStatus(tt.current, tt.minimum); got != tt.want {
				t.Errorf("StockStatus(%d, %d) = %s, want %s", tt.current, tt.minimum, got, tt.want)
			}
		})
	}
}

func TestIsExpiringSoon(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiry    time.Time
		alertDays int
		want      bool
	}{
		{"expires today", now.Add(12 * time.Hour), 30, true},
		{"expires at window edge", now.AddDate(0, 0, 30), 30, true},
		{"expires just past window", now.AddDate(0, 0, 31), 30, false},
		{"already expired is not expiring soon", now.AddDate(0, 0, -1), 30, false},
		{"short alert window", now.AddDate(0, 0, 10), 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpiringSoon(tt.expiry, now, tt.alertDays); got != tt.want {
				t.Errorf("IsExpiringSoon(%v, %d) = %v, want %v", tt.expiry, tt.alertDays, got, tt.want)
			}
		})
	}
}

func TestOccupancyRate(t *testing.T) {
	tests := []struct {
		name            string
		occupied, total int
		want            int
	}{
		{"empty ward", 0, 20, 0},
		{"half full", 10, 20, 50},
		{"full", 20, 20, 100},
		{"rounds half up", 1, 3, 33},
		{"rounds up", 2, 3, 67},
		{"no beds means zero", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OccupancyRate(tt.occupied, tt.total); got != tt.want {
				t.Errorf("OccupancyRate(%d, %d) = %d, want %d", tt.occupied, tt.total, got, tt.want)
			}
		})
	}
}
