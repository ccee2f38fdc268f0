package domain

// LocalizedString maps a locale to text.
type LocalizedString map[string]string

// Get returns the value for locale, or an empty string.
func (l LocalizedString) Get(locale string) string {
	if l == nil {
		return ""
	}
	return l[locale]
}

type Product struct {
	ID              string          `json:"id"`
	Key             string          `json:"key,omitempty"`
	Version         int64           `json:"version"`
	Name            LocalizedString `json:"name"`
	Slug            LocalizedString `json:"slug,omitempty"`
	MetaDescription LocalizedString `json:"metaDescription,omitempty"`
	MasterVariant   Variant         `json:"masterVariant"`
	Variants        []Variant       `json:"variants"`
}

type Variant struct {
	ID int `json:"id"`
	// ListingID is a per-response unique key assigned to master variants of listings.
	ListingID  string      `json:"listingId,omitempty"`
	SKU        string      `json:"sku,omitempty"`
	Prices     []Price     `json:"prices"`
	Images     []Image     `json:"images"`
	Attributes []Attribute `json:"attributes"`
}

type Price struct {
	ID    string `json:"id,omitempty"`
	Value Money  `json:"value"`
}

type Image struct {
	URL    string `json:"url"`
	Label  string `json:"label,omitempty"`
	Width  int    `json:"w,omitempty"`
	Height int    `json:"h,omitempty"`
}

// Attribute values are rendered to text; non-string values keep their JSON form.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
