package handler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// coordinate accepts a JSON number or a numeric string, since map widgets
// commonly post coordinates as text. Absent, null and "" all leave it unset.
type coordinate struct {
	value   *float64
	invalid bool
}

func (c *coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			c.invalid = true
			return nil
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.invalid = true
		return nil
	}
	c.value = &f
	return nil
}
