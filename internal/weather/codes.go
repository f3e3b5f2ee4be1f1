package weather

// condition maps a WMO weather code to display text and an icon name. Night
// variants only differ where the sky matters.
type condition struct {
	summary   string
	dayIcon   string
	nightIcon string
}

// WMO weather interpretation codes as reported by Open-Meteo.
var conditions = map[int]condition{
	0:  {"Clear sky", "clear-day", "clear-night"},
	1:  {"Mainly clear", "clear-day", "clear-night"},
	2:  {"Partly cloudy", "cloudy-day", "cloudy-night"},
	3:  {"Overcast", "overcast", "overcast"},
	45: {"Fog", "fog", "fog"},
	48: {"Depositing rime fog", "fog", "fog"},
	51: {"Light drizzle", "drizzle", "drizzle"},
	53: {"Drizzle", "drizzle", "drizzle"},
	55: {"Dense drizzle", "drizzle", "drizzle"},
	56: {"Freezing drizzle", "sleet", "sleet"},
	57: {"Dense freezing drizzle", "sleet", "sleet"},
	61: {"Light rain", "rain", "rain"},
	63: {"Rain", "rain", "rain"},
	65: {"Heavy rain", "rain", "rain"},
	66: {"Freezing rain", "sleet", "sleet"},
	67: {"Heavy freezing rain", "sleet", "sleet"},
	71: {"Light snow", "snow", "snow"},
	73: {"Snow", "snow", "snow"},
	75: {"Heavy snow", "snow", "snow"},
	77: {"Snow grains", "snow", "snow"},
	80: {"Light showers", "showers-day", "showers-night"},
	81: {"Showers", "showers-day", "showers-night"},
	82: {"Violent showers", "showers-day", "showers-night"},
	85: {"Light snow showers", "snow", "snow"},
	86: {"Heavy snow showers", "snow", "snow"},
	95: {"Thunderstorm", "thunderstorm", "thunderstorm"},
	96: {"Thunderstorm with hail", "thunderstorm", "thunderstorm"},
	99: {"Thunderstorm with heavy hail", "thunderstorm", "thunderstorm"},
}

// unknownSummary is used for codes missing from the table; an unmapped code
// must render, never error.
const unknownSummary = "Unknown conditions"

// describe resolves a weather code and day/night flag to display text and an
// icon name. Unmapped codes yield the placeholder summary and an empty icon.
func describe(code int, isDay bool) (summary, icon string) {
	c, ok := conditions[code]
	if !ok {
		return unknownSummary, ""
	}
	if isDay {
		return c.summary, c.dayIcon
	}
	return c.summary, c.nightIcon
}
