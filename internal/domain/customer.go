package domain

import "time"

// Customer represents a registered commerce customer.
type Customer struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CustomerDraft is the payload for a customer signup.
type CustomerDraft struct {
	Email     string
	Password  string
	FirstName string
	Phone     string
}

// AccessToken is an OAuth token issued by the commerce platform's auth service.
type AccessToken struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresIn    int       `json:"expires_in"`
	Expiry       time.Time `json:"-"`
}

// Session is the customer resolved from a customer access token.
type Session struct {
	CustomerID string
	Email      string
	Version    int64
}
