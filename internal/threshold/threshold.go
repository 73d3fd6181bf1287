// Package threshold parses the free-text threshold column of the alert
// definition table into a structured, unit-normalized form.
package threshold

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator is the comparison direction of a threshold condition.
type Operator string

const (
	OperatorGreaterThan Operator = "GREATER_THAN"
	OperatorLessThan    Operator = "LESS_THAN"
)

// Unit identifies the measurement unit of a threshold value.
type Unit string

const (
	UnitRaw          Unit = "RAW"
	UnitBytes        Unit = "BYTES"
	UnitMilliseconds Unit = "MILLISECONDS"
	UnitSeconds      Unit = "SECONDS"
	UnitMinutes      Unit = "MINUTES"
	UnitHours        Unit = "HOURS"
)

// Threshold is the structured result of parsing one threshold cell.
// Invariant: PureEvent implies Operator and Value are unset; otherwise
// both are set.
type Threshold struct {
	Operator        Operator
	Value           float64
	Unit            Unit
	DurationMinutes int
	PureEvent       bool
}

// FormatError reports a threshold cell that matches no recognized grammar.
type FormatError struct {
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized threshold %q: %s", e.Text, e.Reason)
}

func formatErr(text, reason string) error {
	return &FormatError{Text: text, Reason: reason}
}

// String renders the threshold in its canonical text form. Parsing the
// result yields an equal Threshold.
func (t Threshold) String() string {
	if t.PureEvent {
		if t.DurationMinutes > 0 {
			return fmt.Sprintf("%d minutes", t.DurationMinutes)
		}
		return "any occurrence"
	}

	op := ">"
	if t.Operator == OperatorLessThan {
		op = "<"
	}

	value := strconv.FormatFloat(t.Value, 'f', -1, 64)
	var suffix string
	switch t.Unit {
	case UnitBytes:
		suffix = "b"
	case UnitMilliseconds:
		suffix = "ms"
	case UnitSeconds:
		suffix = "s"
	case UnitMinutes:
		suffix = "min"
	case UnitHours:
		suffix = "h"
	}

	if t.DurationMinutes > 0 {
		return fmt.Sprintf("%s %s%s for %d minutes", op, value, suffix, t.DurationMinutes)
	}
	return fmt.Sprintf("%s %s%s", op, value, suffix)
}

// Parse interprets a free-text threshold cell. Recognized forms, all
// case-insensitive and whitespace-tolerant:
//
//	"> 4000 for 2 minutes"    comparison with sustained duration
//	"< 24h for 5 minutes"     time units normalized to seconds
//	"> 2GB for 15 minutes"    size units normalized to bytes
//	"> 90%"                   percent stays RAW on the 0-100 scale
//	"> 0-10"                  range, lower bound taken
//	"> 10+"                   open-ended, bound taken
//	"any occurrence"          pure event, fires on every occurrence
//	"15 minutes"              pure event delayed by a duration
//
// Empty cells are the caller's "no alert for this priority" signal and are
// rejected here; callers must skip them before parsing.
func Parse(text string) (Threshold, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Threshold{}, formatErr(text, "empty")
	}

	lower := strings.ToLower(s)
	if lower == "any occurrence" || lower == "none" {
		return Threshold{PureEvent: true, Unit: UnitRaw}, nil
	}

	// Bare duration like "15 minutes" or "24 hours": an event-based alert
	// delayed by that long, with no numeric comparison.
	if minutes, ok := parseBareDuration(lower); ok {
		return Threshold{PureEvent: true, Unit: UnitRaw, DurationMinutes: minutes}, nil
	}

	var op Operator
	switch {
	case strings.HasPrefix(s, ">"):
		op = OperatorGreaterThan
	case strings.HasPrefix(s, "<"):
		op = OperatorLessThan
	default:
		return Threshold{}, formatErr(text, "missing comparison operator")
	}
	s = strings.TrimSpace(s[1:])
	if s == "" {
		return Threshold{}, formatErr(text, "missing value after operator")
	}

	valuePart, durationPart := splitFor(s)

	value, unit, err := parseValue(valuePart)
	if err != nil {
		return Threshold{}, formatErr(text, err.Error())
	}

	duration := 0
	if durationPart != "" {
		minutes, ok := parseBareDuration(strings.ToLower(durationPart))
		if !ok {
			return Threshold{}, formatErr(text, fmt.Sprintf("bad duration %q", durationPart))
		}
		duration = minutes
	}

	return Threshold{
		Operator:        op,
		Value:           value,
		Unit:            unit,
		DurationMinutes: duration,
	}, nil
}

// splitFor splits "value for duration" on the first standalone "for" token.
func splitFor(s string) (value, duration string) {
	fields := strings.Fields(s)
	for i, f := range fields {
		if strings.EqualFold(f, "for") {
			return strings.Join(fields[:i], " "), strings.Join(fields[i+1:], " ")
		}
	}
	return s, ""
}

// parseBareDuration matches "<n> minutes" or "<n> hours" (and the short
// forms m/h/min, with or without a space) and returns the span in minutes.
func parseBareDuration(s string) (minutes int, ok bool) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	switch strings.TrimSpace(s[i:]) {
	case "minute", "minutes", "min", "m":
		return n, true
	case "hour", "hours", "h":
		return n * 60, true
	}
	return 0, false
}

// parseValue interprets the numeric portion of a comparison, normalizing
// size units to bytes and time units to seconds. Percent values stay RAW
// on the 0-100 scale.
func parseValue(s string) (float64, Unit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", fmt.Errorf("missing value")
	}

	// Range like "0-10": take the lower bound to keep it distinct from
	// the open-ended "10+" form.
	if low, _, found := strings.Cut(s, "-"); found && low != "" {
		if n, err := strconv.ParseFloat(low, 64); err == nil {
			return n, UnitRaw, nil
		}
	}

	// Open-ended like "10+".
	if rest, found := strings.CutSuffix(s, "+"); found {
		n, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			return 0, "", fmt.Errorf("bad value %q", s)
		}
		return n, UnitRaw, nil
	}

	// Plain "<number><unit?>" with an optional space before the unit.
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	if i == 0 {
		return 0, "", fmt.Errorf("bad value %q", s)
	}
	value, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, "", fmt.Errorf("bad value %q", s)
	}

	switch strings.ToLower(strings.TrimSpace(s[i:])) {
	case "":
		return value, UnitRaw, nil
	case "%", "/second":
		return value, UnitRaw, nil
	case "ms":
		return value, UnitMilliseconds, nil
	case "s", "sec", "second", "seconds":
		return value, UnitSeconds, nil
	case "min":
		return value, UnitMinutes, nil
	case "h", "hour", "hours":
		return value * 3600, UnitSeconds, nil
	case "b", "bytes":
		return value, UnitBytes, nil
	case "kb":
		return value * (1 << 10), UnitBytes, nil
	case "mb":
		return value * (1 << 20), UnitBytes, nil
	case "gb":
		return value * (1 << 30), UnitBytes, nil
	default:
		return 0, "", fmt.Errorf("unknown unit %q", strings.TrimSpace(s[i:]))
	}
}
