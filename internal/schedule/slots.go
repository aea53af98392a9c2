package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/healthbridge/telehealth-platform/internal/appointments"
	"github.com/healthbridge/telehealth-platform/internal/timeutil"
	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

// Slot is one bookable time on a doctor's calendar, in 24-hour "HH:MM" form.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// AvailableSlots carves the schedule's working window into slotDuration-sized
// starts and drops any time already booked. A schedule that is switched off,
// malformed or has a non-positive slot size yields no slots.
func AvailableSlots(sched *Schedule, booked []string) []Slot {
	if sched == nil || !sched.IsAvailable || sched.SlotDuration <= 0 {
		return nil
	}
	start := parseClock24(sched.StartTime)
	end := parseClock24(sched.EndTime)
	if start < 0 || end < 0 || start >= end {
		return nil
	}

	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	var slots []Slot
	for minute := start; minute < end; minute += sched.SlotDuration {
		clock := fmt.Sprintf("%02d:%02d", minute/60, minute%60)
		if _, ok := taken[clock]; ok {
			continue
		}
		slots = append(slots, Slot{Time: clock, Available: true})
	}
	return slots
}

// parseClock24 converts "HH:MM" into minutes since midnight, -1 on bad input.
func parseClock24(clock string) int {
	var hour, minute int
	if _, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute); err != nil {
		return -1
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return -1
	}
	return hour*60 + minute
}

// AppointmentLister is the slice of the appointment repository the
// availability service reads.
type AppointmentLister interface {
	ListByParty(ctx context.Context, partyID string, role appointments.Role) ([]*appointments.Appointment, error)
}

// Availability resolves a doctor's free slots for a calendar date by joining
// the weekly schedule against the appointments already booked that day.
type Availability struct {
	schedules *Store
	appts     AppointmentLister
	logger    *logging.Logger
}

// NewAvailability builds the availability service.
func NewAvailability(schedules *Store, appts AppointmentLister, logger *logging.Logger) *Availability {
	if schedules == nil {
		panic("schedule: schedule store cannot be nil")
	}
	if appts == nil {
		panic("schedule: appointment lister cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Availability{
		schedules: schedules,
		appts:     appts,
		logger:    logger,
	}
}

// SlotsFor returns the doctor's open slots on the given date. Rejected and
// cancelled appointments do not hold their slot.
func (a *Availability) SlotsFor(ctx context.Context, doctorID string, date time.Time) ([]Slot, error) {
	if doctorID == "" {
		return nil, errors.New("schedule: doctorId required")
	}

	scheds, err := a.schedules.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	weekday := date.Weekday().String()
	var daySched *Schedule
	for _, sched := range scheds {
		if sched.Day == weekday && sched.IsAvailable {
			daySched = sched
			break
		}
	}
	if daySched == nil {
		return nil, nil
	}

	booked, err := a.appts.ListByParty(ctx, doctorID, appointments.RoleDoctor)
	if err != nil {
		return nil, err
	}

	var taken []string
	for _, appt := range booked {
		if appt.Status == appointments.StatusRejected || appt.Status == appointments.StatusCancelled {
			continue
		}
		d, ok := timeutil.NormalizeDate(appt.AppointmentDate)
		if !ok || !timeutil.SameDay(date, d) {
			continue
		}
		taken = append(taken, appt.AppointmentTime)
	}

	return AvailableSlots(daySched, taken), nil
}
