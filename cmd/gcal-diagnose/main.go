// Command gcal-diagnose walks through the Google Calendar setup step by
// step and prints what is wrong when a step fails. Run it whenever the
// bot cannot reach the calendar.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"clinicbot/config"
	"clinicbot/models"
	"clinicbot/services/calendar"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	config.LoadConfig()

	fmt.Println("=== Google Calendar diagnostics ===")
	fmt.Println()

	// Step 1: the credentials file must exist.
	credFile := config.AppConfig.GoogleCredentialsFile
	fmt.Printf("1. Checking credentials file: %s\n", credFile)
	if _, err := os.Stat(credFile); err != nil {
		fmt.Printf("   FAIL: %v\n", err)
		listJSONSiblings(credFile)
		fmt.Println("   Set GOOGLE_CREDENTIALS_FILE to the service account key path.")
		os.Exit(1)
	}
	fmt.Println("   OK")

	// Step 2: it must be a readable service account key.
	fmt.Println("2. Reading service account metadata")
	meta, err := calendar.ReadServiceAccountMeta(credFile)
	if err != nil {
		fmt.Printf("   FAIL: %v\n", err)
		fmt.Println("   The file exists but is not a valid service account JSON key.")
		os.Exit(1)
	}
	fmt.Printf("   Service account: %s\n", meta.ClientEmail)
	fmt.Printf("   Project:         %s\n", meta.ProjectID)

	// Step 3: the API client must build.
	fmt.Println("3. Building the Calendar API client")
	loc, err := time.LoadLocation(config.AppConfig.BusinessTimezone)
	if err != nil {
		fmt.Printf("   FAIL: invalid BUSINESS_TIMEZONE: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	gateway, err := calendar.NewGoogleGateway(ctx, calendar.Options{
		CredentialsFile:    credFile,
		CalendarID:         config.AppConfig.CalendarID,
		ImpersonateSubject: config.AppConfig.ImpersonateSubject,
		Location:           loc,
	})
	if err != nil {
		fmt.Printf("   FAIL: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("   OK")

	// Step 4: the configured calendar must be visible.
	fmt.Printf("4. Fetching calendar %q\n", config.AppConfig.CalendarID)
	info, err := gateway.GetCalendar(ctx)
	switch {
	case calendar.IsNotFound(err):
		fmt.Println("   FAIL: the calendar was not found.")
		fmt.Println("   Most likely the calendar is not shared with the service account.")
		fmt.Printf("   Share it with %s (\"Make changes to events\") and retry.\n", meta.ClientEmail)
		os.Exit(1)
	case calendar.IsForbidden(err):
		fmt.Println("   FAIL: access denied.")
		fmt.Println("   Check that the Calendar API is enabled for the project and the")
		fmt.Printf("   calendar is shared with %s.\n", meta.ClientEmail)
		os.Exit(1)
	case err != nil:
		fmt.Printf("   FAIL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("   OK: %s\n", info.Summary)
	if err := gateway.RegisterCalendar(ctx); err != nil {
		fmt.Printf("   Note: could not add the calendar to the account's list: %v\n", err)
	}

	// Step 5: the calendar must be writable.
	fmt.Println("5. Creating and deleting a probe event")
	start := time.Now().In(loc).Add(time.Minute)
	created, err := gateway.InsertEvent(ctx, probeEvent(start, loc))
	if err != nil {
		fmt.Printf("   FAIL: could not create an event (%s): %v\n", calendar.KindOf(err), err)
		fmt.Println("   The calendar is readable but not writable. Grant the service")
		fmt.Println("   account \"Make changes to events\" access.")
		os.Exit(1)
	}
	fmt.Printf("   Created probe event %s\n", created.ID)
	if err := gateway.DeleteEvent(ctx, created.ID); err != nil {
		fmt.Printf("   Note: failed to delete the probe event: %v\n", err)
	} else {
		fmt.Println("   Deleted probe event")
	}

	// Step 6: summary.
	fmt.Println("6. Configuration summary")
	fmt.Printf("   Calendar ID:  %s\n", config.AppConfig.CalendarID)
	fmt.Printf("   Timezone:     %s\n", config.AppConfig.BusinessTimezone)
	fmt.Printf("   Working day:  %s - %s\n", config.AppConfig.BusinessDayStart, config.AppConfig.BusinessDayEnd)
	fmt.Printf("   Slot length:  %d minutes\n", config.AppConfig.SlotMinutes)
	if config.AppConfig.ImpersonateSubject != "" {
		fmt.Printf("   Impersonating: %s\n", config.AppConfig.ImpersonateSubject)
	}
	fmt.Println()
	fmt.Println("All checks passed. The bot should be able to use this calendar.")
}

func probeEvent(start time.Time, loc *time.Location) models.EventInput {
	return models.EventInput{
		Summary:     "TEST - connection check",
		Description: "Probe event created by gcal-diagnose",
		Start:       start,
		End:         start.Add(5 * time.Minute),
		TimeZone:    loc.String(),
	}
}

func listJSONSiblings(credFile string) {
	dir := filepath.Dir(credFile)
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(matches) == 0 {
		return
	}
	fmt.Println("   JSON files found nearby:")
	for _, m := range matches {
		fmt.Printf("     %s\n", m)
	}
}
