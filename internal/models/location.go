package models

import "sort"

// Location represents a stop or station from search results
type Location struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Type     string   `json:"type"`
	Products []string `json:"products,omitempty"`
}

// LocationResponse represents the raw JSON response for location search
type LocationResponse struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	Products map[string]bool `json:"products"`
}

// ToLocation converts the raw response to a Location
func (r *LocationResponse) ToLocation() *Location {
	loc := &Location{
		ID:   r.ID,
		Name: r.Name,
		Type: r.Type,
	}

	if r.Location != nil {
		loc.Lat = r.Location.Latitude
		loc.Lon = r.Location.Longitude
	}

	// Products arrive as a flag map; keep only served ones in a stable order
	for product, served := range r.Products {
		if served {
			loc.Products = append(loc.Products, product)
		}
	}
	sort.Strings(loc.Products)

	return loc
}

// IsStop reports whether the location can be used as a departure board
func (l *Location) IsStop() bool {
	return l.Type == "stop" || l.Type == "station"
}
