package format

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// maxETA caps estimates produced from very slow completion rates.
const maxETA = 24 * time.Hour

// rateSmoothing weights the latest completion rate against the history.
const rateSmoothing = 0.3

// ProgressWithETA tracks completed fetch tasks out of a known total and
// estimates the remaining time from a smoothed completion rate. It is safe
// for concurrent use.
type ProgressWithETA struct {
	mu sync.Mutex

	total        int
	done         int
	startTime    time.Time
	lastUpdate   time.Time
	lastFraction float64
	// progressRate is the smoothed completion rate in fraction per second.
	progressRate float64
}

// NewProgressWithETA creates a tracker for total tasks.
func NewProgressWithETA(total int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{total: total, startTime: now, lastUpdate: now}
}

// Update records the number of completed tasks. Values outside [0, total]
// are clamped.
func (p *ProgressWithETA) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.update(done)
}

func (p *ProgressWithETA) update(done int) {
	p.done = max(0, min(done, p.total))
	fraction := p.fraction()

	now := time.Now()
	elapsed := now.Sub(p.lastUpdate).Seconds()
	if elapsed > 0 && fraction > p.lastFraction {
		rate := (fraction - p.lastFraction) / elapsed
		if p.progressRate == 0 {
			p.progressRate = rate
		} else {
			p.progressRate = rateSmoothing*rate + (1-rateSmoothing)*p.progressRate
		}
	}
	p.lastUpdate = now
	p.lastFraction = fraction
}

// UpdateWithETA records done and returns the completed fraction and the
// estimated remaining time.
func (p *ProgressWithETA) UpdateWithETA(done int) (float64, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.update(done)
	return p.fraction(), p.eta()
}

// Fraction returns the completed fraction in [0, 1].
func (p *ProgressWithETA) Fraction() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fraction()
}

func (p *ProgressWithETA) fraction() float64 {
	if p.total <= 0 {
		return 0
	}
	return float64(p.done) / float64(p.total)
}

// GetETA returns the estimated remaining time, or 0 while no rate is known.
func (p *ProgressWithETA) GetETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eta()
}

func (p *ProgressWithETA) eta() time.Duration {
	remaining := 1 - p.fraction()
	if p.progressRate <= 0 || remaining <= 0 {
		return 0
	}
	eta := time.Duration(remaining / p.progressRate * float64(time.Second))
	if eta > maxETA || eta < 0 {
		return maxETA
	}
	return eta
}

// Elapsed returns the time since the tracker was created.
func (p *ProgressWithETA) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// FormatETA renders an estimate as "45s", "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m := int(eta.Minutes())
		s := int(eta.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		h := int(eta.Hours())
		m := int(eta.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// ProgressBar renders a bar of length cells for a fraction in [0, 1].
func ProgressBar(fraction float64, length int) string {
	fraction = max(0, min(fraction, 1))
	filled := int(fraction * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar] 50.0% ETA: 30s".
func FormatProgressBarWithETA(fraction float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(fraction, width), max(0, min(fraction, 1))*100, FormatETA(eta))
}
