package models

// Listing is one of the account's items as shown on the "on display"
// page. Values are produced fresh per enumeration pass and are never
// persisted.
type Listing struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	View     int    `json:"view"`
	Favorite int    `json:"favorite"`
	IsStop   int    `json:"is_stop"`
}

// Stopped reports whether the listing is suspended (not on display).
// The site exposes this as a numeric flag, kept as-is.
func (l Listing) Stopped() bool {
	return l.IsStop != 0
}
