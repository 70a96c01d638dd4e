package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RSVP represents a guest's attendance confirmation
type RSVP struct {
	ID         string     `json:"_id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	Attendance Attendance `json:"attendance"`
	Guests     int        `json:"guests"`
	Allergies  string     `json:"allergies"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Attendance is the answer a guest gives on the RSVP form
type Attendance string

const (
	AttendanceAttending    Attendance = "Hadir"
	AttendanceNotAttending Attendance = "Tidak Hadir"
	AttendanceMaybe        Attendance = "Mungkin"
)

// Attendances lists every accepted attendance value in form order.
var Attendances = []Attendance{AttendanceAttending, AttendanceNotAttending, AttendanceMaybe}

// Valid reports whether a is one of the known attendance values
func (a Attendance) Valid() bool {
	switch a {
	case AttendanceAttending, AttendanceNotAttending, AttendanceMaybe:
		return true
	}
	return false
}

// ParseAttendance matches the wire value case-insensitively.
func ParseAttendance(s string) (Attendance, error) {
	s = strings.TrimSpace(s)
	for _, a := range Attendances {
		if strings.EqualFold(string(a), s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown attendance %q", s)
}

// GuestCount is the number of people covered by one RSVP. The invitation form
// posts it as a string, API clients usually as a number; both decode.
type GuestCount int

func (g *GuestCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*g = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*g = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("guests must be a whole number: %w", err)
		}
		*g = GuestCount(n)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("guests must be a number: %w", err)
	}
	v, err := n.Int64()
	if err != nil {
		return fmt.Errorf("guests must be a whole number: %w", err)
	}
	*g = GuestCount(v)
	return nil
}

// Stats summarises all RSVPs
type Stats struct {
	Total        int `json:"total"`
	Attending    int `json:"attending"`
	NotAttending int `json:"notAttending"`
	Maybe        int `json:"maybe"`
	TotalGuests  int `json:"totalGuests"`
}

// Add folds count RSVPs with the given attendance and guest sum into s.
func (s *Stats) Add(a Attendance, count, guests int) {
	s.Total += count
	s.TotalGuests += guests
	switch a {
	case AttendanceAttending:
		s.Attending += count
	case AttendanceNotAttending:
		s.NotAttending += count
	case AttendanceMaybe:
		s.Maybe += count
	}
}
