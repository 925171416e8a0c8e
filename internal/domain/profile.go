package domain

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Profile is a registered user with their accumulated sales volumes.
type Profile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	FirstName      string    `json:"firstName,omitempty"`
	LastName       string    `json:"lastName,omitempty"`
	ReferralCode   string    `json:"referralCode"`
	SponsorID      *string   `json:"sponsorId,omitempty"`
	RankID         *string   `json:"rankId,omitempty"`
	Rank           *Rank     `json:"rank,omitempty"`
	PersonalVolume int64     `json:"personalVolume"`
	GroupVolume    int64     `json:"groupVolume"`
	TeamSize       int       `json:"teamSize"`
	CreatedAt      time.Time `json:"createdAt"`
}
