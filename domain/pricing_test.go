package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2025-06-02 is a Monday, 2025-06-06 a Friday, 2025-06-07 a Saturday.
var (
	monday   = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	friday   = time.Date(2025, time.June, 6, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2025, time.June, 7, 0, 0, 0, 0, time.UTC)
	sunday   = time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC)
)

func TestPriceForNight(t *testing.T) {
	villa := DefaultVilla()

	tests := []struct {
		name  string
		setup func(*Villa)
		date  time.Time
		rooms int
		want  float64
	}{
		{
			name:  "weekdayFullHouse",
			date:  monday,
			rooms: 3,
			want:  5000,
		},
		{
			name:  "fridayIsWeekend",
			date:  friday,
			rooms: 3,
			want:  6000,
		},
		{
			name:  "saturdayIsWeekend",
			date:  saturday,
			rooms: 3,
			want:  6000,
		},
		{
			name:  "sundayIsWeekday",
			date:  sunday,
			rooms: 3,
			want:  5000,
		},
		{
			name:  "singleRoomReduction",
			date:  monday,
			rooms: 1,
			want:  1000, // 5000 - 2000*(3-1)
		},
		{
			name:  "twoRoomReduction",
			date:  monday,
			rooms: 2,
			want:  3000,
		},
		{
			name: "discountedRateWins",
			setup: func(v *Villa) {
				v.WeekdayDiscountedPrice = 4500
			},
			date:  monday,
			rooms: 3,
			want:  4500,
		},
		{
			name: "zeroDiscountIgnored",
			setup: func(v *Villa) {
				v.WeekendDiscountedPrice = 0
			},
			date:  saturday,
			rooms: 3,
			want:  6000,
		},
		{
			name: "neverBelowZero",
			setup: func(v *Villa) {
				v.PriceReductionPerRoom = 3000
			},
			date:  monday,
			rooms: 1,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := *villa
			if tt.setup != nil {
				tt.setup(&v)
			}
			assert.InDelta(t, tt.want, v.PriceForNight(tt.date, tt.rooms), 0.001)
		})
	}
}

func TestTotalPriceExcludesCheckoutNight(t *testing.T) {
	villa := DefaultVilla()

	// Thursday to Sunday: Thu (weekday) + Fri + Sat (weekend) = 5000+6000+6000.
	thursday := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	total := villa.TotalPrice(thursday, sunday, 3)
	assert.InDelta(t, 17000, total, 0.001)

	// A single night charges only check-in.
	assert.InDelta(t, 5000, villa.TotalPrice(monday, monday.AddDate(0, 0, 1), 3), 0.001)

	// Empty or inverted range charges nothing.
	assert.Zero(t, villa.TotalPrice(monday, monday, 3))
	assert.Zero(t, villa.TotalPrice(sunday, monday, 3))
}

func TestVillaValidate(t *testing.T) {
	valid := DefaultVilla()
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		setup func(*Villa)
	}{
		{"negativeWeekdayPrice", func(v *Villa) { v.WeekdayPrice = -1 }},
		{"discountAboveBase", func(v *Villa) { v.WeekdayDiscountedPrice = v.WeekdayPrice + 1 }},
		{"negativeReduction", func(v *Villa) { v.PriceReductionPerRoom = -500 }},
		{"zeroBedrooms", func(v *Villa) { v.Bedrooms = 0 }},
		{"minRoomsAboveBedrooms", func(v *Villa) { v.MinRooms = v.Bedrooms + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := *DefaultVilla()
			tt.setup(&v)
			assert.Error(t, v.Validate())
		})
	}
}
