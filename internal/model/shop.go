package model

// Shop is the vendor owning sub-orders and coupons.
type Shop struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}
