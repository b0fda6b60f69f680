package cracker

import (
	"time"

	"github.com/dustin/go-humanize"
)

const progressInterval = 200 * time.Millisecond

// throttler decides when a progress report is due, enforcing the >=200ms
// cadence shared by the dictionary and brute-force phases.
type throttler struct {
	last time.Time
}

func newThrottler() *throttler {
	return &throttler{}
}

func (t *throttler) due(now time.Time) bool {
	if now.Sub(t.last) < progressInterval {
		return false
	}
	t.last = now
	return true
}

// String renders a ProgressReport for human consumption (CLI/log lines).
func (p ProgressReport) String() string {
	rate := humanize.Comma(int64(p.Rate))
	checked := humanize.Comma(int64(p.Checked))
	eta := "unknown"
	if p.ETA > 0 {
		eta = humanize.Time(time.Now().Add(p.ETA))
	}
	return checked + " checked, " + rate + "/s, phase=" + p.Phase + ", eta " + eta
}
