package domain

// ComputeTotal derives a booking's total cost: every lodging night plus every
// place price, plus pricePerDay*totalDays when transport is chosen. Pure —
// same inputs always yield the same total. Callers recompute whenever the day
// plans or transport change; client-supplied totals are never trusted.
func ComputeTotal(days []DayPlan, transport *TransportSelection) float64 {
	var total float64
	for _, d := range days {
		if d.Lodging != nil {
			total += d.Lodging.PricePerNight
		}
		for _, p := range d.Places {
			total += p.Price
		}
	}
	if transport != nil {
		total += transport.PricePerDay * float64(transport.TotalDays)
	}
	return total
}
