package domain

// ProviderInfo is one authentication provider linked to an identity record.
type ProviderInfo struct {
	ProviderID string
	UID        string
	Email      string
}

// IdentityRecord is a user held by the identity provider.
type IdentityRecord struct {
	UID         string
	Email       string
	Phone       string
	DisplayName string
	Providers   []ProviderInfo
}

// ProviderEmail returns the first linked provider's email, falling back to the record email.
func (r IdentityRecord) ProviderEmail() string {
	for _, p := range r.Providers {
		if p.Email != "" {
			return p.Email
		}
	}
	return r.Email
}
