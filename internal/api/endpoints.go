package api

const (
	// BaseURL is the public VBB instance of transport.rest
	BaseURL = "https://v6.vbb.transport.rest"

	// EndpointStopDepartures returns departures at a stop; %s is the stop id
	// Params: duration (minutes), results, when
	EndpointStopDepartures = "/stops/%s/departures"

	// EndpointStations autocompletes station names
	// Params: query, limit, fuzzy
	EndpointStations = "/stations"

	// EndpointLocations searches stops, addresses and POIs by name
	// Params: query, results, stops, addresses, poi
	EndpointLocations = "/locations"
)

// defaultLocationResults bounds the typed location search
const defaultLocationResults = 10
