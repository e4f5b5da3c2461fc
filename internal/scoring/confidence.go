package scoring

// Confidence grows with the number of reports, capped at +30, and gains 10
// when weather data is available.
func Confidence(reportCount int, hasWeather bool) float64 {
	c := 50.0 + min(float64(reportCount)*5, 30)
	if hasWeather {
		c += 10
	}
	return clamp(c, 0, 100)
}
