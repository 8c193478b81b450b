package exchange

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// WriteJSON renders records as the full export envelope.
func WriteJSON(w io.Writer, records []Record, appVersion string) error {
	payload := Payload{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		AppVersion: appVersion,
		Inventory:  records,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("encode export payload: %w", err)
	}
	return nil
}

// ReadJSON accepts either the full export envelope or a bare record array.
func ReadJSON(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err == nil && payload.Inventory != nil {
		return payload.Inventory, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse import json: %w", err)
	}
	return records, nil
}
