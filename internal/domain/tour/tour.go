package tour

import (
	"github.com/shopspring/decimal"
)

// UnknownHotelName is joined onto price records whose hotel id is missing
// from the directory. Records are never dropped during enrichment.
const UnknownHotelName = "unknown"

// PriceRecord is one raw price as returned by the pricing gateway.
// Immutable once received.
type PriceRecord struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	HotelID   string          `json:"hotelID"`
}

// HotelRecord holds the denormalized hotel attributes used to enrich
// price records. Hotel id spaces are scoped per search key.
type HotelRecord struct {
	Name        string   `json:"name"`
	Img         string   `json:"img"`
	CityName    string   `json:"cityName"`
	CountryName string   `json:"countryName"`
	Stars       int      `json:"stars"`
	Description string   `json:"description"`
	Services    []string `json:"services"`
	Address     string   `json:"address"`
}

// EnrichedTour is a PriceRecord joined with its hotel attributes.
type EnrichedTour struct {
	PriceRecord

	HotelName   string   `json:"hotelName"`
	Img         string   `json:"img"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	Stars       int      `json:"stars"`
	Description string   `json:"description"`
	Services    []string `json:"services"`
	Address     string   `json:"address"`
}
