package tools

import (
	"context"
	"fmt"
	"time"
)

type CurrentDateInput struct {
	Location string `json:"location,omitempty" jsonschema_description:"IANA time zone identifier (e.g., 'Australia/Sydney', 'America/New_York'), default is UTC"`
}

type CurrentDateOutput struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
}

var now = time.Now

// GetCurrentDate returns today's date in the requested zone.
func GetCurrentDate(ctx context.Context, input CurrentDateInput) (CurrentDateOutput, error) {
	loc := time.UTC
	if input.Location != "" {
		var err error
		loc, err = time.LoadLocation(input.Location)
		if err != nil {
			return CurrentDateOutput{}, fmt.Errorf("invalid location: %v", err)
		}
	}
	today := now().In(loc)
	return CurrentDateOutput{
		Date:    today.Format(time.DateOnly),
		Weekday: today.Weekday().String(),
	}, nil
}
