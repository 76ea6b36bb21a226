package booking

import "fmt"

// BackButton is the reply-keyboard label that returns to date selection.
const BackButton = "« Back to dates"

const (
	msgWelcome = "Welcome to the appointment booking service!\n\n" +
		"Pick a date for your visit:"
	msgPickDateFirst = "Pick a date first:"
	msgBadDateFormat = "That date doesn't look right. Use the YYYY-MM-DD format."
	msgBadTimeFormat = "That time doesn't look right. Use the HH:MM format."
	msgPastDate      = "That date is in the past. Pick an upcoming date."
	msgSlotTaken     = "Sorry, that slot has just been taken. Pick another time:"
	msgTryLater      = "Something went wrong on our side. Please try again later."
	msgNoBookings    = "You have no upcoming appointments."
	msgFallbackDown  = "Sorry, I can't answer that right now.\n" +
		"To book an appointment, use /start."
	msgCalendarDown = "The booking calendar is unavailable right now. Please try again later."

	msgHelp = "Available commands:\n\n" +
		"/start - book an appointment\n" +
		"/my_bookings - list your appointments\n" +
		"/test_calendar - check the calendar connection\n" +
		"/help - show this message\n\n" +
		"How to book:\n" +
		"1. Send /start\n" +
		"2. Pick a date\n" +
		"3. Pick a free time slot\n" +
		"4. Get your confirmation\n\n" +
		"You can also just ask me a question."
)

func msgDayFull(date string) string {
	return fmt.Sprintf("All slots on %s are taken.\nPick another date:", date)
}

func msgPickTime(date string, free int) string {
	return fmt.Sprintf("Pick a time for %s.\n%d free slots available:", date, free)
}

func msgConfirmation(date, from, to, name string) string {
	return fmt.Sprintf("You're booked in!\n\n"+
		"Date: %s\n"+
		"Time: %s - %s\n"+
		"Name: %s\n\n"+
		"The appointment is in the calendar and you'll get a reminder "+
		"30 minutes before it starts.\n\n"+
		"To make another booking, use /start.", date, from, to, name)
}
