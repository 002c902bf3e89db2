package monitor

import (
	"fmt"

	"rdtmon/internal/events"
	"rdtmon/internal/provider"
)

// Factors converts raw counter units into display units: kilobytes for
// occupancy, megabytes for the bandwidth deltas. Events that were never
// requested keep a factor of 1 so the value is always defined.
type Factors struct {
	LLC float64
	MBR float64
	MBL float64
}

// ResolveFactors computes the scale factors for every event in the
// display mask. A requested event the provider cannot supply is a
// fatal configuration error.
func ResolveFactors(caps provider.Capabilities, display events.Mask) (Factors, error) {
	f := Factors{LLC: 1, MBR: 1, MBL: 1}

	if display.Has(events.Occupancy) {
		info, ok := caps.Event(events.Occupancy)
		if !ok {
			return f, fmt.Errorf("failed to obtain LLC occupancy event data")
		}
		f.LLC = info.ScaleFactor / 1024.0
	}
	if display.Has(events.RemoteBandwidth) {
		info, ok := caps.Event(events.RemoteBandwidth)
		if !ok {
			return f, fmt.Errorf("failed to obtain MBR event data")
		}
		f.MBR = info.ScaleFactor / (1024.0 * 1024.0)
	}
	if display.Has(events.LocalBandwidth) {
		info, ok := caps.Event(events.LocalBandwidth)
		if !ok {
			return f, fmt.Errorf("failed to obtain MBL event data")
		}
		f.MBL = info.ScaleFactor / (1024.0 * 1024.0)
	}
	return f, nil
}
