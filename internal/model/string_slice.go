package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringSlice stores a []string as a single comma joined column. This keeps
// amenity filters expressible as plain LIKE patterns on every driver, so no
// element may contain a comma.
type StringSlice []string

// Value implements the driver.Valuer interface.
// Stored with leading and trailing commas so ",WiFi," matches exactly one element.
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "", nil
	}

	for _, v := range s {
		if strings.Contains(v, ",") {
			return "", fmt.Errorf("unsafe string, %s", v)
		}
	}

	return "," + strings.Join(s, ",") + ",", nil
}

// Scan implements the sql.Scanner interface.
func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	str, ok := value.(string)
	if !ok {
		b, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("failed to scan StringSlice, %v", value)
		}

		str = string(b)
	}

	str = strings.Trim(str, ",")
	if str == "" {
		*s = StringSlice{}
	} else {
		*s = strings.Split(str, ",")
	}

	return nil
}

// MarshalJSON keeps empty slices as [] instead of null.
func (s StringSlice) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// ElementPattern returns the LIKE pattern matching one element of a stored StringSlice.
func ElementPattern(element string) string {
	return "%," + element + ",%"
}
