package referral

import "time"

// Slot is the assigned appointment date and wall-clock time. The time is a
// fixed string, not timezone aware.
type Slot struct {
	Date string
	Time string
}

const slotDateLayout = "2006-01-02"

// AssignSlot maps the stated symptom duration onto a scheduling tier.
// Short durations route to the earliest specialist tier available, two weeks
// out: specialist capacity is assumed scarcer than general practice, so there
// is never a same-day slot.
//
//	days  <= 7  -> +2 weeks @ 10:00
//	weeks <= 4  -> +3 weeks @ 14:00
//	months >= 1, or weeks > 4 -> +6 weeks @ 11:00
//	duration absent    -> +3 weeks @ 09:00
//	present, unmatched -> +3 weeks @ 09:30
func AssignSlot(now time.Time, d *Duration) Slot {
	if d == nil {
		return Slot{Date: now.AddDate(0, 0, 21).Format(slotDateLayout), Time: "09:00"}
	}

	switch d.Unit {
	case UnitDays:
		if d.Value <= 7 {
			return Slot{Date: now.AddDate(0, 0, 14).Format(slotDateLayout), Time: "10:00"}
		}
	case UnitWeeks:
		if d.Value <= 4 {
			return Slot{Date: now.AddDate(0, 0, 21).Format(slotDateLayout), Time: "14:00"}
		}
		// Symptoms running past a month route to the months tier.
		return Slot{Date: now.AddDate(0, 0, 42).Format(slotDateLayout), Time: "11:00"}
	case UnitMonths:
		if d.Value >= 1 {
			return Slot{Date: now.AddDate(0, 0, 42).Format(slotDateLayout), Time: "11:00"}
		}
	}

	return Slot{Date: now.AddDate(0, 0, 21).Format(slotDateLayout), Time: "09:30"}
}
