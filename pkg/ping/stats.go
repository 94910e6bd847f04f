package ping

import (
	"fmt"
	"time"
)

// Stats aggregates the outcome of one ping run
type Stats struct {
	Sent    int             // Requests sent (including failed ones)
	Failed  int             // Requests that did not produce a valid pong
	Elapsed time.Duration   // Wall-clock duration of the whole run
	RTTs    []time.Duration // Round-trip time of each successful exchange
}

func newStats() *Stats {
	return &Stats{}
}

func (s *Stats) record(rtt time.Duration) {
	s.RTTs = append(s.RTTs, rtt)
}

// Succeeded returns the number of successful round trips
func (s *Stats) Succeeded() int {
	return len(s.RTTs)
}

// Average is the total elapsed time divided by the number of requests sent,
// matching how the run is measured (inter-request sleeps included).
func (s *Stats) Average() time.Duration {
	if s.Sent == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Sent)
}

// MinRTT returns the fastest measured round trip, or zero without successes
func (s *Stats) MinRTT() time.Duration {
	var min time.Duration
	for i, rtt := range s.RTTs {
		if i == 0 || rtt < min {
			min = rtt
		}
	}
	return min
}

// MaxRTT returns the slowest measured round trip, or zero without successes
func (s *Stats) MaxRTT() time.Duration {
	var max time.Duration
	for _, rtt := range s.RTTs {
		if rtt > max {
			max = rtt
		}
	}
	return max
}

// MeanRTT returns the arithmetic mean of the measured round trips
func (s *Stats) MeanRTT() time.Duration {
	if len(s.RTTs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, rtt := range s.RTTs {
		sum += rtt
	}
	return sum / time.Duration(len(s.RTTs))
}

// Summary renders a one-line human readable summary
func (s *Stats) Summary() string {
	return fmt.Sprintf("sent=%d ok=%d failed=%d elapsed=%v avg=%v rtt(min/mean/max)=%v/%v/%v",
		s.Sent, s.Succeeded(), s.Failed, s.Elapsed.Round(time.Millisecond),
		s.Average().Round(time.Millisecond),
		s.MinRTT().Round(time.Microsecond), s.MeanRTT().Round(time.Microsecond), s.MaxRTT().Round(time.Microsecond))
}
