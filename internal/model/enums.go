package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Priority is an integer-backed task priority. Lower is more urgent.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

var priorityNames = map[string]Priority{
	"HIGH":   PriorityHigh,
	"MEDIUM": PriorityMedium,
	"LOW":    PriorityLow,
}

// Valid reports whether p is one of the defined priorities.
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// String returns the upper-case priority name.
func (p Priority) String() string {
	for name, v := range priorityNames {
		if v == p {
			return name
		}
	}
	return strconv.Itoa(int(p))
}

// ParsePriority accepts an integer (1-3) or a case-insensitive name.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if p, ok := priorityNames[strings.ToUpper(s)]; ok {
		return p, nil
	}
	n, err := strconv.Atoi(s)
	if err == nil && Priority(n).Valid() {
		return Priority(n), nil
	}
	return 0, fmt.Errorf("invalid priority %q: must be one of HIGH, MEDIUM, LOW or 1, 2, 3", s)
}

// PriorityFromAny converts a decoded JSON value (number or string).
func PriorityFromAny(v any) (Priority, error) {
	switch t := v.(type) {
	case float64:
		if t != float64(int(t)) || !Priority(int(t)).Valid() {
			return 0, fmt.Errorf("invalid priority %v: must be 1, 2 or 3", t)
		}
		return Priority(int(t)), nil
	case json.Number:
		return ParsePriority(t.String())
	case string:
		if _, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			// Numeric strings are not names; only real integers are accepted.
			return 0, fmt.Errorf("invalid priority %q: must be one of HIGH, MEDIUM, LOW", t)
		}
		return ParsePriority(t)
	default:
		return 0, fmt.Errorf("invalid priority: must be an integer or a priority name")
	}
}

// UnmarshalJSON accepts the integer or the case-insensitive name.
func (p *Priority) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	parsed, err := PriorityFromAny(v)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalJSON always renders the integer form.
func (p Priority) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(p))), nil
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the accepted task statuses in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is an accepted status. Matching is exact.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q: must be one of pending, in_progress, completed", s)
	}
	return st, nil
}

// UnmarshalJSON rejects values outside the status set.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("status must be a string")
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
