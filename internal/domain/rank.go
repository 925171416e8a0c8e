package domain

import "time"

// Rank is one rung of the compensation ladder. The ladder order is implied by
// ThresholdPV ascending.
type Rank struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CommissionRate float64   `json:"commissionRate"`
	ThresholdPV    int64     `json:"thresholdPv"`
	ThresholdGV    int64     `json:"thresholdGv"`
	CreatedAt      time.Time `json:"createdAt"`
}
