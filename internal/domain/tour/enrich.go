package tour

import "sort"

// BuildTours joins every price record against the hotel directory and
// returns the enriched list ordered by record id. The join is total: a
// record whose hotel id is not in the directory still comes out, carrying
// UnknownHotelName, so the record count in equals the record count out.
func BuildTours(records map[string]PriceRecord, hotels map[string]HotelRecord) []EnrichedTour {
	if len(records) == 0 {
		return []EnrichedTour{}
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tours := make([]EnrichedTour, 0, len(records))
	for _, id := range ids {
		record := records[id]
		enriched := EnrichedTour{PriceRecord: record}

		if hotel, ok := hotels[record.HotelID]; ok {
			enriched.HotelName = hotel.Name
			enriched.Img = hotel.Img
			enriched.City = hotel.CityName
			enriched.Country = hotel.CountryName
			enriched.Stars = hotel.Stars
			enriched.Description = hotel.Description
			enriched.Services = hotel.Services
			enriched.Address = hotel.Address
		} else {
			enriched.HotelName = UnknownHotelName
		}

		tours = append(tours, enriched)
	}

	return tours
}
