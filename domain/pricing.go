package domain

import "time"

// Nightly pricing follows the villa's rate card: Friday and Saturday nights
// are weekend nights, a configured discounted rate beats the base rate, and
// booking fewer than all bedrooms subtracts the per-room reduction for each
// room left unbooked. The result never goes below zero.

func isWeekendNight(date time.Time) bool {
	day := date.Weekday()
	return day == time.Friday || day == time.Saturday
}

// PriceForNight returns the nightly rate for booking rooms of the villa's
// bedrooms on the given date.
func (v *Villa) PriceForNight(date time.Time, rooms int) float64 {
	var rate float64
	if isWeekendNight(date) {
		rate = v.WeekendPrice
		if v.WeekendDiscountedPrice > 0 {
			rate = v.WeekendDiscountedPrice
		}
	} else {
		rate = v.WeekdayPrice
		if v.WeekdayDiscountedPrice > 0 {
			rate = v.WeekdayDiscountedPrice
		}
	}

	reduction := v.PriceReductionPerRoom * float64(v.Bedrooms-rooms)
	price := rate - reduction
	if price < 0 {
		return 0
	}
	return price
}

// TotalPrice sums PriceForNight over every night in [checkIn, checkOut).
// The checkout night is not charged.
func (v *Villa) TotalPrice(checkIn, checkOut time.Time, rooms int) float64 {
	var total float64
	for night := checkIn; night.Before(checkOut); night = night.AddDate(0, 0, 1) {
		total += v.PriceForNight(night, rooms)
	}
	return total
}
