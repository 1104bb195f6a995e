package config

import (
	"errors"
	"fmt"
	"strings"

	"pipesched/internal/schedule"
)

// ValidateSchedules checks what every backend relies on: non-empty names,
// unique names and a known type. Day ranges are left to the backends.
func ValidateSchedules(list []schedule.Schedule) error {
	seen := make(map[string]struct{}, len(list))
	for i, s := range list {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("schedules[%d]: name required", i)
		}
		if strings.ContainsAny(name, " \t\r\n/:") {
			return fmt.Errorf("schedules[%d]: name %q must not contain whitespace, '/' or ':'", i, s.Name)
		}
		if _, err := schedule.ParseType(string(s.Type)); err != nil {
			return fmt.Errorf("schedules[%d] %q: %w", i, s.Name, err)
		}
		if strings.TrimSpace(s.Command) == "" {
			return fmt.Errorf("schedules[%d] %q: command required", i, s.Name)
		}
		if _, dup := seen[name]; dup {
			return &DuplicateNameError{Name: name}
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Validate checks the parts of the record the scheduler consumes.
func (r *Record) Validate() error {
	if r == nil {
		return errors.New("config is nil")
	}
	return ValidateSchedules(r.Schedules)
}
