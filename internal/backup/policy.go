package backup

import (
	"encoding/json"
	"fmt"
	"os"
)

// Policy is the persisted backup configuration. It lives in its own small
// JSON file, not a store row, so it stays legible while the store itself is
// being replaced or reset.
type Policy struct {
	Enabled       bool `json:"enabled"`
	Hour          int  `json:"hour"`
	RetentionDays int  `json:"retention_days"`
}

func defaultPolicy() Policy {
	return Policy{Enabled: false, Hour: 3, RetentionDays: 14}
}

func (p Policy) validate() error {
	if p.Hour < 0 || p.Hour > 23 {
		return fmt.Errorf("hour must be between 0 and 23, got %d", p.Hour)
	}
	if p.RetentionDays < 1 {
		return fmt.Errorf("retention must be at least 1 day, got %d", p.RetentionDays)
	}
	return nil
}

// LoadPolicy reads the policy file, falling back to the disabled default
// when the file does not exist yet.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultPolicy(), nil
	}
	if err != nil {
		return Policy{}, fmt.Errorf("read backup policy: %w", err)
	}
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse backup policy: %w", err)
	}
	if err := p.validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// SavePolicy writes the policy file.
func SavePolicy(path string, p Policy) error {
	if err := p.validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup policy: %w", err)
	}
	return nil
}
