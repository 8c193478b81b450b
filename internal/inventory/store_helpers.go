package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableInt64(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

// Expiry dates persist as a JSON array so heterogeneous legacy strings
// survive round-trips byte for byte.
func encodeDates(dates []string) (any, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(dates)
	if err != nil {
		return nil, fmt.Errorf("encode expiry dates: %w", err)
	}
	return string(data), nil
}

func decodeDates(raw string) []string {
	if raw == "" {
		return nil
	}
	var dates []string
	if err := json.Unmarshal([]byte(raw), &dates); err != nil {
		// Legacy rows stored a single bare string.
		return []string{raw}
	}
	return dates
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
