package catalog

import "time"

// DefaultCategory is assigned when a product is created without one.
const DefaultCategory = "wood"

// Product is a bilingual (zh/en) catalog entry. Prices are display text as
// entered by the shop owner, not amounts the order flow computes with.
// Images is the ordered list of reference paths; the first one is the main
// image shown in listings.
type Product struct {
	ID        string    `json:"id"`
	ZhTitle   string    `json:"zhTitle"`
	EnTitle   string    `json:"enTitle,omitempty"`
	ZhPrice   string    `json:"zhPrice"`
	EnPrice   string    `json:"enPrice,omitempty"`
	ZhDesc    string    `json:"zhDesc"`
	EnDesc    string    `json:"enDesc,omitempty"`
	Link      string    `json:"link"`
	Image     string    `json:"image"`
	Images    []string  `json:"images"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MainImage returns the first image reference, or "" for a product without
// images.
func (p *Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
