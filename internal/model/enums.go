package model

import (
	"fmt"
	"strings"
)

// TimeSlot is one of the three daily dosing times.
type TimeSlot int

const (
	Morning TimeSlot = iota
	Noon
	Night
)

// TimeSlots lists the slots in day order.
var TimeSlots = []TimeSlot{Morning, Noon, Night}

func (s TimeSlot) String() string {
	switch s {
	case Morning:
		return "morning"
	case Noon:
		return "noon"
	case Night:
		return "night"
	default:
		return "unknown"
	}
}

func (s TimeSlot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Route is the administration route of a medicine.
type Route int

const (
	Oral Route = iota
	Injectable
	Suppository
)

var routeNames = map[Route]string{
	Oral:        "oral",
	Injectable:  "injectable",
	Suppository: "suppository",
}

// Labels written by the browser version of the tracker.
var legacyRouteLabels = map[string]Route{
	"口服": Oral,
	"针剂": Injectable,
	"塞剂": Suppository,
}

// Valid reports whether r is a known route.
func (r Route) Valid() bool {
	_, ok := routeNames[r]
	return ok
}

func (r Route) String() string {
	if name, ok := routeNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRoute parses a route name or one of the legacy labels.
func ParseRoute(s string) (Route, error) {
	s = strings.TrimSpace(s)
	if r, ok := legacyRouteLabels[s]; ok {
		return r, nil
	}
	for r, name := range routeNames {
		if strings.EqualFold(s, name) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("invalid administration route %q (valid: oral, injectable, suppository)", s)
}

func (r Route) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid administration route %d", r)
	}
	return []byte(r.String()), nil
}

func (r *Route) UnmarshalText(b []byte) error {
	parsed, err := ParseRoute(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
