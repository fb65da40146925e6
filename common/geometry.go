package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

type Position struct {
	X int
	Y int
}

// ParsePosition reads an "x,y" offset. Coordinates must not be negative.
func ParsePosition(input string) (Position, error) {
	values, parseErr := parsePair(input, ",")
	if parseErr != nil {
		return Position{}, errors.Wrapf(parseErr, "invalid offset %q, expected x,y", input)
	}

	return Position{X: values[0], Y: values[1]}, nil
}

func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

type Size struct {
	Height int
	Width  int
}

// ParseSize reads a "WxH" frame size.
func ParseSize(input string) (Size, error) {
	values, parseErr := parsePair(strings.ToLower(input), "x")
	if parseErr != nil {
		return Size{}, errors.Wrapf(parseErr, "invalid size %q, expected WxH", input)
	}
	if values[0] == 0 || values[1] == 0 {
		return Size{}, errors.Newf("invalid size %q, width and height must be positive", input)
	}

	return Size{Height: values[1], Width: values[0]}, nil
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

func parsePair(input, separator string) ([2]int, error) {
	values := [2]int{}

	parts := strings.Split(strings.TrimSpace(input), separator)
	if len(parts) != 2 {
		return values, errors.New("wrong number of fields")
	}

	for i, part := range parts {
		number, parseErr := strconv.Atoi(strings.TrimSpace(part))
		if parseErr != nil {
			return values, parseErr
		}
		if number < 0 {
			return values, errors.Newf("negative value %d", number)
		}
		values[i] = number
	}

	return values, nil
}
