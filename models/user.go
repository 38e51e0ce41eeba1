package models

// User is the authenticated identity the identity provider reports.
type User struct {
	ID string `json:"id"`
}
