package testutil

// Sample transport.rest responses for API testing

// SampleDepartureResponse is a departures response for Wolliner Str.
// It holds one delayed tram, one bus without real-time data and one
// cancelled bus whose when is null.
const SampleDepartureResponse = `{
	"departures": [
		{
			"tripId": "1|32514|3|86|1012024",
			"stop": {"type": "stop", "id": "900007105", "name": "Wolliner Str. (Berlin)"},
			"when": "2024-01-01T10:07:00+01:00",
			"plannedWhen": "2024-01-01T10:05:00+01:00",
			"delay": 120,
			"platform": null,
			"direction": "S+U Hauptbahnhof",
			"line": {
				"type": "line",
				"id": "m10",
				"name": "M10",
				"mode": "train",
				"product": "tram"
			}
		},
		{
			"tripId": "1|27701|11|86|1012024",
			"stop": {"type": "stop", "id": "900007105", "name": "Wolliner Str. (Berlin)"},
			"when": null,
			"plannedWhen": "2024-01-01T10:09:00+01:00",
			"delay": null,
			"direction": "S Nordbahnhof",
			"line": {
				"type": "line",
				"id": "247",
				"name": "247",
				"mode": "bus",
				"product": "bus"
			}
		},
		{
			"tripId": "1|27702|11|86|1012024",
			"stop": {"type": "stop", "id": "900007105", "name": "Wolliner Str. (Berlin)"},
			"when": null,
			"plannedWhen": "2024-01-01T10:19:00+01:00",
			"delay": null,
			"cancelled": true,
			"direction": "S Nordbahnhof",
			"line": {
				"type": "line",
				"id": "247",
				"name": "247",
				"mode": "bus",
				"product": "bus"
			}
		}
	],
	"realtimeDataUpdatedAt": 1704099600
}`

// SampleSubwayDepartureResponse is a departures response for U-Bernauer Str.
const SampleSubwayDepartureResponse = `{
	"departures": [
		{
			"tripId": "1|41002|5|86|1012024",
			"when": "2024-01-01T10:06:00+01:00",
			"plannedWhen": "2024-01-01T10:06:00+01:00",
			"delay": 0,
			"direction": "S+U Hermannstr.",
			"line": {"type": "line", "id": "u8", "name": "U8", "mode": "train", "product": "subway"}
		}
	]
}`

// SampleLocationResponse is a location search response for "bernauer"
const SampleLocationResponse = `[
	{
		"type": "stop",
		"id": "900007110",
		"name": "U Bernauer Str. (Berlin)",
		"location": {"type": "location", "latitude": 52.537994, "longitude": 13.396231},
		"products": {
			"suburban": false,
			"subway": true,
			"tram": false,
			"bus": true,
			"ferry": false,
			"express": false,
			"regional": false
		}
	},
	{
		"type": "location",
		"id": "990012345",
		"name": "Bernauer Str. 1, Berlin",
		"location": {"type": "location", "latitude": 52.5401, "longitude": 13.3982}
	}
]`

// SampleStationsResponse is a /stations autocomplete response keyed by id
const SampleStationsResponse = `{
	"900110006": {
		"type": "station",
		"id": "900110006",
		"name": "U Eberswalder Str.",
		"weight": 4123,
		"location": {"type": "location", "latitude": 52.541213, "longitude": 13.412003}
	}
}`

// SampleEmptyDepartureResponse is a departures response with no entries
const SampleEmptyDepartureResponse = `{"departures": []}`

// SampleEmptyResponse is an empty JSON response
const SampleEmptyResponse = `{}`

// SampleErrorResponse is a transport.rest error body
const SampleErrorResponse = `{
	"message": "stop not found",
	"isHafasError": true,
	"code": "NOT_FOUND"
}`
