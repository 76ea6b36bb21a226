// Command calendar-check lists every calendar the service account can
// see and reports whether the configured one is among them.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"clinicbot/config"
	"clinicbot/services/calendar"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	config.LoadConfig()

	loc, err := time.LoadLocation(config.AppConfig.BusinessTimezone)
	if err != nil {
		fmt.Printf("Invalid BUSINESS_TIMEZONE: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	gateway, err := calendar.NewGoogleGateway(ctx, calendar.Options{
		CredentialsFile:    config.AppConfig.GoogleCredentialsFile,
		CalendarID:         config.AppConfig.CalendarID,
		ImpersonateSubject: config.AppConfig.ImpersonateSubject,
		Location:           loc,
	})
	if err != nil {
		fmt.Printf("Failed to build the Calendar API client: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Calendars visible to the service account:")
	calendars, err := gateway.ListCalendars(ctx)
	if err != nil {
		fmt.Printf("Failed to list calendars: %v\n", err)
		os.Exit(1)
	}
	if len(calendars) == 0 {
		fmt.Println("  (none)")
		fmt.Println()
		fmt.Println("The service account's calendar list is empty. Share the target")
		fmt.Println("calendar with the service account, or run gcal-diagnose to add")
		fmt.Println("it to the list automatically.")
	}

	found := false
	for _, c := range calendars {
		marker := " "
		if c.ID == config.AppConfig.CalendarID {
			marker = "*"
			found = true
		}
		primary := ""
		if c.Primary {
			primary = " (primary)"
		}
		fmt.Printf("  %s %s  [%s]%s\n", marker, c.ID, c.AccessRole, primary)
		if c.Summary != "" {
			fmt.Printf("      %s\n", c.Summary)
		}
	}

	fmt.Println()
	if found {
		fmt.Printf("Configured calendar %q is in the list.\n", config.AppConfig.CalendarID)
		return
	}

	fmt.Printf("Configured calendar %q is NOT in the list.\n", config.AppConfig.CalendarID)
	if info, err := gateway.GetCalendar(ctx); err == nil {
		fmt.Printf("It is still reachable directly (%s), so the bot will work;\n", info.Summary)
		fmt.Println("it just has not been added to the account's calendar list.")
		return
	}
	fmt.Println("It is not reachable directly either. Run gcal-diagnose for")
	fmt.Println("step-by-step remediation.")
	os.Exit(1)
}
