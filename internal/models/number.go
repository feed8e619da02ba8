package models

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNotANumber is returned by FlexNumber conversions.
var ErrNotANumber = errors.New("not a number")

// FlexNumber is a numeric request field that may arrive as a JSON number,
// a numeric string or null. The text is kept as sent and converted on use.
type FlexNumber string

// NumberFromFloat formats f as a FlexNumber.
func NumberFromFloat(f float64) FlexNumber {
	return FlexNumber(strconv.FormatFloat(f, 'f', -1, 64))
}

// NumberFromInt formats i as a FlexNumber.
func NumberFromInt(i int64) FlexNumber {
	return FlexNumber(strconv.FormatInt(i, 10))
}

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*n = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*n = FlexNumber(str)
	default:
		*n = FlexNumber(s)
	}
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	if f, err := n.Float(); err == nil {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	return json.Marshal(string(n))
}

// Float parses the value strictly.
func (n FlexNumber) Float() (float64, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, ErrNotANumber
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotANumber
	}
	return f, nil
}

// Int parses the value as an integer; integral floats such as "3.0" are
// accepted.
func (n FlexNumber) Int() (int64, error) {
	s := strings.TrimSpace(string(n))
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := n.Float()
	if err != nil || f != math.Trunc(f) {
		return 0, ErrNotANumber
	}
	return int64(f), nil
}
