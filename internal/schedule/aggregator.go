package schedule

import (
	"sort"
	"time"

	"github.com/healthbridge/telehealth-platform/internal/appointments"
	"github.com/healthbridge/telehealth-platform/internal/timeutil"
)

// Summary holds the dashboard counters for one party's appointment history.
type Summary struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// Summarize computes the dashboard counters over a snapshot of appointments.
// Appointments whose date cannot be recovered count toward Total but never
// toward Today.
func Summarize(appts []*appointments.Appointment, now time.Time) Summary {
	s := Summary{Total: len(appts)}
	for _, a := range appts {
		switch a.Status {
		case appointments.StatusPending:
			s.Pending++
		case appointments.StatusCompleted:
			s.Completed++
		}
		if d, ok := timeutil.NormalizeDate(a.AppointmentDate); ok && timeutil.SameDay(now, d) {
			s.Today++
		}
	}
	return s
}

// DayBucket is one calendar date of the weekly timeline.
type DayBucket struct {
	Date         string                      `json:"date"`
	Appointments []*appointments.Appointment `json:"appointments"`
}

// WeeklyTimeline buckets appointments over the window [today, today+7], both
// ends inclusive, whatever their status. Buckets are date-ascending, entries
// within a bucket sort by parsed minute-of-day with malformed times last,
// and dates with no appointments are omitted.
func WeeklyTimeline(appts []*appointments.Appointment, now time.Time) []DayBucket {
	windowStart := timeutil.DateOnly(now)
	windowEnd := windowStart.AddDate(0, 0, 7)

	buckets := map[string][]*appointments.Appointment{}
	for _, a := range appts {
		d, ok := timeutil.NormalizeDate(a.AppointmentDate)
		if !ok {
			continue
		}
		day := timeutil.DateOnly(d.In(now.Location()))
		if day.Before(windowStart) || day.After(windowEnd) {
			continue
		}
		key := day.Format("2006-01-02")
		buckets[key] = append(buckets[key], a)
	}

	dates := make([]string, 0, len(buckets))
	for key := range buckets {
		dates = append(dates, key)
	}
	sort.Strings(dates)

	timeline := make([]DayBucket, 0, len(dates))
	for _, key := range dates {
		entries := buckets[key]
		sort.SliceStable(entries, func(i, j int) bool {
			return timeutil.ParseClockMinutes(entries[i].AppointmentTime) < timeutil.ParseClockMinutes(entries[j].AppointmentTime)
		})
		timeline = append(timeline, DayBucket{Date: key, Appointments: entries})
	}
	return timeline
}
