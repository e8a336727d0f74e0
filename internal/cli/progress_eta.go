package cli

import (
	"fmt"
	"time"
)

// ProgressWithETA extends ProgressState with an estimate of the remaining
// time. Grid points complete in one step, so the estimate is the mean time
// per completed point times the points left.
type ProgressWithETA struct {
	*ProgressState
	startTime time.Time
	now       func() time.Time
}

// NewProgressWithETA creates a progress tracker with ETA support.
func NewProgressWithETA(numPoints int) *ProgressWithETA {
	return &ProgressWithETA{
		ProgressState: NewProgressState(numPoints),
		startTime:     time.Now(),
		now:           time.Now,
	}
}

// UpdateWithETA records the progress of one point and returns the average
// progress together with the current estimate.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (progress float64, eta time.Duration) {
	p.Update(index, value)
	return p.CalculateAverage(), p.GetETA()
}

// GetETA estimates the remaining time, or 0 before any progress was made
// and after completion.
func (p *ProgressWithETA) GetETA() time.Duration {
	progress := p.CalculateAverage()
	if progress <= 0 || progress >= 1 {
		return 0
	}
	elapsed := p.now().Sub(p.startTime)
	eta := time.Duration(float64(elapsed) * (1 - progress) / progress)
	if eta > 24*time.Hour {
		eta = 24 * time.Hour
	}
	return eta
}

// FormatETA formats a duration into a human-readable ETA string.
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		minutes := int(eta.Minutes())
		if seconds := int(eta.Seconds()) % 60; seconds > 0 {
			return fmt.Sprintf("%dm%ds", minutes, seconds)
		}
		return fmt.Sprintf("%dm", minutes)
	}
	hours := int(eta.Hours())
	if minutes := int(eta.Minutes()) % 60; minutes > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dh", hours)
}
