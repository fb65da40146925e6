package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	millisecondsPerHour   = 60 * 60 * 1000
	millisecondsPerMinute = 60 * 1000
	millisecondsPerSecond = 1000
)

// TimeCode is a point on the subtitle timeline with millisecond precision.
type TimeCode struct {
	TotalMilliseconds int64
}

func NewTimeCode(hours, minutes, seconds, milliseconds int64) TimeCode {
	return TimeCode{TotalMilliseconds: hours*millisecondsPerHour + minutes*millisecondsPerMinute + seconds*millisecondsPerSecond + milliseconds}
}

// ParseTimeCode reads "HH:MM:SS.mmm". A comma is accepted as the fraction
// separator and the hour field may have any number of digits.
func ParseTimeCode(input string) (TimeCode, error) {
	value := strings.TrimSpace(input)
	value = strings.Replace(value, ",", ".", 1)

	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return TimeCode{}, errors.Newf("invalid time code %q, expected HH:MM:SS.mmm", input)
	}

	secondParts := strings.SplitN(parts[2], ".", 2)
	fraction := "0"
	if len(secondParts) == 2 {
		fraction = secondParts[1]
	}
	if len(fraction) > 3 {
		return TimeCode{}, errors.Newf("invalid time code %q, too many fraction digits", input)
	}
	//"5" means 500ms, not 5ms
	fraction += strings.Repeat("0", 3-len(fraction))

	fields := []string{parts[0], parts[1], secondParts[0], fraction}
	values := [4]int64{}
	for i, field := range fields {
		number, parseErr := strconv.ParseInt(field, 10, 64)
		if parseErr != nil || number < 0 {
			return TimeCode{}, errors.Newf("invalid time code %q", input)
		}
		values[i] = number
	}

	if values[1] > 59 || values[2] > 59 {
		return TimeCode{}, errors.Newf("invalid time code %q, minutes and seconds must be below 60", input)
	}

	return NewTimeCode(values[0], values[1], values[2], values[3]), nil
}

func (t TimeCode) Hours() int64 {
	return t.TotalMilliseconds / millisecondsPerHour
}

func (t TimeCode) Minutes() int64 {
	return t.TotalMilliseconds % millisecondsPerHour / millisecondsPerMinute
}

func (t TimeCode) Seconds() int64 {
	return t.TotalMilliseconds % millisecondsPerMinute / millisecondsPerSecond
}

func (t TimeCode) Milliseconds() int64 {
	return t.TotalMilliseconds % millisecondsPerSecond
}

func (t TimeCode) String() string {
	sign := ""
	if t.TotalMilliseconds < 0 {
		sign = "-"
		t.TotalMilliseconds = -t.TotalMilliseconds
	}

	return fmt.Sprintf("%s%02d:%02d:%02d.%03d", sign, t.Hours(), t.Minutes(), t.Seconds(), t.Milliseconds())
}
