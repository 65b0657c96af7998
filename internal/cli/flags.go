package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

const dateLayout = "2006-01-02"

// parseWhen accepts RFC 3339 or a bare date in loc. A bare date with
// endOfDay set covers the whole day.
func parseWhen(value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", value, loc); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use YYYY-MM-DD, \"YYYY-MM-DD HH:MM\" or RFC 3339", value)
	}
	if endOfDay {
		return d.AddDate(0, 0, 1).Add(-time.Millisecond), nil
	}
	return d, nil
}

// timeFlag reads an optional time flag; nil when unset.
func timeFlag(cmd *cobra.Command, name string, loc *time.Location) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	t, err := parseWhen(raw, loc, false)
	if err != nil {
		return nil, apperrors.NewValidationError(name, raw, err.Error())
	}
	return &t, nil
}

// floatFlag returns the flag's value only when it was set explicitly.
func floatFlag(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "window start (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().String("to", "", "window end, inclusive (YYYY-MM-DD or RFC 3339)")
}

// windowFlags reads --from/--to. Both or neither must be given.
func windowFlags(cmd *cobra.Command, loc *time.Location) (*models.DateRange, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: --from and --to must be given together", apperrors.ErrInvalidWindow)
	}
	start, err := parseWhen(from, loc, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidWindow, err)
	}
	end, err := parseWhen(to, loc, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidWindow, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: --to is before --from", apperrors.ErrInvalidWindow)
	}
	return &models.DateRange{From: start, To: end}, nil
}
