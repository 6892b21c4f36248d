package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxJSONSize    = 8 * 1024 * 1024 // 8MB - maximum request payload (file writes travel as JSON)
	MaxMessageSize = 1 * 1024 * 1024 // 1MB - single terminal write
	MaxPathLength  = 4096
)

// String length limits
const (
	MaxIDLength      = 128
	MaxCommandLength = 4096
	MaxBranchLength  = 255
)

// Terminal dimension limits
const (
	MinDimension = 1
	MaxDimension = 4096
)

var (
	// SessionIDPattern is the event-name-safe set: session IDs are embedded in
	// pty-output-<id> and pty-exit-<id>
	SessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_:/-]+$`)
	// ToolIDPattern allows alphanumeric, hyphens, underscores, and dots (for service.tool format)
	ToolIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Null bytes would truncate the value at the syscall boundary
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateSessionID validates a caller-chosen terminal session ID. It allows
// everything an event name may carry: alphanumerics, '-', '_', '/' and ':'.
func ValidateSessionID(id, fieldName string) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, true); err != nil {
		return err
	}
	if !SessionIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, '-', '_', '/' and ':' allowed)", fieldName)
	}
	return nil
}

// ValidateToolID validates a tool ID field (allows dots for service.tool format)
func ValidateToolID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !ToolIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, dots, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidatePath validates the shape of a path parameter. Containment is the
// sandbox's job; this only rejects values no filesystem call should see.
func ValidatePath(path, fieldName string) error {
	return ValidateString(path, fieldName, 1, MaxPathLength, true)
}

// ValidateBranch validates a git branch or ref name parameter
func ValidateBranch(branch, fieldName string) error {
	if err := ValidateString(branch, fieldName, 1, MaxBranchLength, true); err != nil {
		return err
	}
	// A leading dash would be parsed by git as an option
	if strings.HasPrefix(branch, "-") {
		return fmt.Errorf("%s must not start with '-'", fieldName)
	}
	return nil
}

// ValidateDimension validates a terminal dimension (columns or rows)
func ValidateDimension(value int, fieldName string) error {
	if value < MinDimension || value > MaxDimension {
		return fmt.Errorf("%s must be between %d and %d", fieldName, MinDimension, MaxDimension)
	}
	return nil
}
