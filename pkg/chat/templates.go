package chat

import (
	"fmt"
	"time"
)

// Category selects a confirmation template table.
type Category int

const (
	MemoryUpdated Category = iota
	GoalSaved
	HabitSaved
	ReminderSet
	ReminderFired
)

var templates = map[Category][]string{
	MemoryUpdated: {
		"I've just updated your memory.",
		"Got it! I'll remember that.",
		"Noted, I've saved this for next time.",
		"You mentioned this before, I remember it now.",
		"Thanks! That's added to your memory.",
	},
	GoalSaved: {
		"Cool goal: '%s'. Logged.",
		"Got it, '%s' added to your goals.",
		"Nice. '%s' is on your list now.",
		"Okay! I saved '%s' as something to aim for.",
		"'%s' is in. Want me to check in about it later?",
	},
	HabitSaved: {
		"Got it, I'll keep track of '%s'.",
		"Habit saved: '%s'.",
		"Added to your habits: '%s'.",
		"Cool, I'll help you track '%s' from now.",
		"Noted. '%s' is something I'll nudge you about.",
	},
	ReminderSet: {
		"Got it, I'll remind you to '%s' at %s.",
		"Okay! Reminder for '%s' set for %s.",
		"Done, '%s' is locked in. I'll nudge you at %s.",
		"Noted. I'll ping you about '%s' at %s.",
		"All set, you'll get a nudge about '%s' at %s.",
	},
	ReminderFired: {
		"Just a nudge: '%s'. Want to do it now or snooze?",
		"It's time for: '%s'. Shall we do it?",
		"Reminder time, '%s'. You in?",
		"Hey! Remember '%s'? Want to act on it or reschedule?",
		"Time for '%s'. Ready or need more time?",
	},
}

// pickTemplate is a pure selection: the same category and index always yield
// the same template, indexed modulo the table length. Callers supply the
// randomness.
func pickTemplate(cat Category, n int) string {
	t := templates[cat]
	if n < 0 {
		n = -n
	}
	return t[n%len(t)]
}

// MemoryNotice renders the "memory updated" line.
func MemoryNotice(n int) string {
	return pickTemplate(MemoryUpdated, n)
}

// GoalConfirmation renders the goal/habit confirmation. The record type, not
// the classifier label, decides the wording.
func GoalConfirmation(goalType, content string, n int) string {
	cat := GoalSaved
	if goalType == "habit" {
		cat = HabitSaved
	}
	return fmt.Sprintf(pickTemplate(cat, n), content)
}

// ReminderConfirmation renders the reminder-set confirmation.
func ReminderConfirmation(content string, at time.Time, n int) string {
	return fmt.Sprintf(pickTemplate(ReminderSet, n), content, at.Local().Format(timeFormat))
}

// ReminderNudgeText renders the line shown when a reminder comes due.
func ReminderNudgeText(content string, n int) string {
	return fmt.Sprintf(pickTemplate(ReminderFired, n), content)
}

const timeFormat = "Jan 2, 2006 3:04 PM"
