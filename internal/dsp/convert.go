package dsp

// FrequencyToTemperature converts a detected tone frequency in Hz to water
// temperature in degC using the AXBT transfer function.
func FrequencyToTemperature(frequency float64) float64 {
	return (frequency - 1440) / 36
}

// TimeToDepth converts seconds since probe release to depth in meters
// using the linear AXBT fall-rate equation.
func TimeToDepth(elapsed float64) float64 {
	return 1.52 * elapsed
}
