package http

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var errNotMinorUnits = errors.New("amount must be an integer number of minor currency units")

// MinorAmount is an int64 amount of minor currency units that accepts both
// JSON numbers and numeric strings. The storefront form posts whatever the
// input field held, so "150000" and 150000 must both parse.
type MinorAmount int64

func (a *MinorAmount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var quoted string
		if err := json.Unmarshal(data, &quoted); err != nil {
			return errNotMinorUnits
		}
		s = strings.TrimSpace(quoted)
		if s == "" {
			return nil
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return errNotMinorUnits
	}
	*a = MinorAmount(n)
	return nil
}

func (a MinorAmount) Int64() int64 { return int64(a) }
