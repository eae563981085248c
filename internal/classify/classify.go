// Package classify maps raw status signals onto a health state.
//
// Precedence, first match wins: an explicit status field; the HTTP code of a structured
// record; the numeric response time of a structured record; the badge colour heuristics;
// and finally up.
package classify

import (
	"strconv"
	"strings"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

const (
	// SlowResponseMillis is the response time above which a structured record is slow.
	SlowResponseMillis = 10000
	// HighUptimePercent is the availability above which a red response-time badge is read as slow.
	HighUptimePercent = 95
)

const (
	colorRed    = "red"
	colorOrange = "orange"
	colorYellow = "yellow"
)

// Classify returns the health state for sig.
func Classify(sig types.Signal) types.Status {
	switch sig.Kind {
	case types.SignalBadges:
		if sig.Badges != nil {
			return classifyBadges(*sig.Badges)
		}
	case types.SignalRecord:
		if sig.Record != nil {
			return classifyRecord(*sig.Record)
		}
	}
	return types.StatusUp
}

func classifyRecord(rec types.StructuredRecord) types.Status {
	if s, ok := explicit(rec.Status); ok {
		return s
	}
	if rec.Code != nil {
		code := *rec.Code
		switch {
		case code >= 200 && code < 300:
			return types.StatusUp
		case code >= 400:
			return types.StatusDown
		}
	}
	if rec.ResponseTime != nil {
		rt := *rec.ResponseTime
		switch {
		case rt > SlowResponseMillis:
			return types.StatusSlow
		case rt > 0:
			return types.StatusUp
		}
	}
	return types.StatusUp
}

func classifyBadges(pair types.BadgePair) types.Status {
	if s, ok := explicit(pair.ResponseTime.Status); ok {
		return s
	}
	if s, ok := explicit(pair.Uptime.Status); ok {
		return s
	}

	responseColor := normColor(pair.ResponseTime.Color)
	uptimeColor := normColor(pair.Uptime.Color)

	if uptimeColor == colorRed {
		return types.StatusDown
	}

	// Sustained availability means a red response time is a blip, not an outage.
	if pct, ok := UptimePercent(pair.Uptime.Message); ok && pct > HighUptimePercent {
		if responseColor == colorRed {
			return types.StatusSlow
		}
		return types.StatusUp
	}

	switch responseColor {
	case colorRed:
		return types.StatusDown
	case colorOrange, colorYellow:
		return types.StatusSlow
	}
	return types.StatusUp
}

// explicit returns a trusted status field verbatim.
func explicit(raw string) (types.Status, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	return types.Status(raw), true
}

// UptimePercent parses an uptime badge message such as "99.03%".
func UptimePercent(message string) (float64, bool) {
	v := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(message), "%"))
	if v == "" {
		return 0, false
	}
	pct, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return pct, true
}

func normColor(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
