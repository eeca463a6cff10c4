package dsp

import "math"

// VHF channel/frequency pairing for sonobuoy receivers. Frequencies run
// 136.000 to 173.500 MHz in 0.375 MHz steps with 161.500 and 161.875
// excluded; channels run 32..99 followed by the interleaved 1..16/17..31
// sub-bands. The two tables are index-aligned.
var (
	vhfFrequencies []float64
	vhfChannels    []float64
)

func init() {
	for f := 136.0; f <= 173.5; f += 0.375 {
		if f == 161.5 || f == 161.875 {
			continue
		}
		vhfFrequencies = append(vhfFrequencies, f)
	}

	for ch := 32.0; ch <= 99; ch++ {
		vhfChannels = append(vhfChannels, ch)
	}
	for i := 0; i < 15; i++ {
		vhfChannels = append(vhfChannels, float64(1+i), float64(17+i))
	}
	vhfChannels = append(vhfChannels, 16)
}

// FindFrequency returns the VHF frequency in MHz for a channel. A channel
// not present in the table is snapped to the nearest valid channel (first
// minimum in table order on ties); the snapped channel is returned
// alongside the frequency.
func FindFrequency(channel float64) (frequency, correctedChannel float64) {
	idx := exactIndex(vhfChannels, channel)
	if idx < 0 {
		idx = nearestIndex(vhfChannels, channel)
	}
	return vhfFrequencies[idx], vhfChannels[idx]
}

// FindChannel returns the VHF channel for a frequency in MHz, snapping
// out-of-table frequencies the same way FindFrequency snaps channels.
func FindChannel(frequency float64) (channel, correctedFrequency float64) {
	idx := exactIndex(vhfFrequencies, frequency)
	if idx < 0 {
		idx = nearestIndex(vhfFrequencies, frequency)
	}
	return vhfChannels[idx], vhfFrequencies[idx]
}

func exactIndex(table []float64, value float64) int {
	for i, v := range table {
		if v == value {
			return i
		}
	}
	return -1
}

func nearestIndex(table []float64, value float64) int {
	best := 0
	bestDist := math.Abs(table[0] - value)
	for i := 1; i < len(table); i++ {
		if d := math.Abs(table[i] - value); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
