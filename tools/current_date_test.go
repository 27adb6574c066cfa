package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCurrentDate(t *testing.T) {
	original := now
	t.Cleanup(func() { now = original })
	now = func() time.Time { return time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC) }

	out, err := GetCurrentDate(context.Background(), CurrentDateInput{})
	require.NoError(t, err)
	assert.Equal(t, CurrentDateOutput{Date: "2024-03-01", Weekday: "Friday"}, out)

	out, err = GetCurrentDate(context.Background(), CurrentDateInput{Location: "Australia/Sydney"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", out.Date)

	_, err = GetCurrentDate(context.Background(), CurrentDateInput{Location: "Mars/Olympus"})
	assert.Error(t, err)
}
