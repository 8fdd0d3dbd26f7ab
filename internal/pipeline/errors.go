package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

const errorPrefix = "ERROR:"

var (
	ErrEmptyInput   = errors.New("empty input")
	ErrUpstream     = errors.New("upstream reported an error")
	ErrNoShotMarker = errors.New("no shot start marker found")
	ErrNoShotData   = errors.New("parsing yielded no shot data")
	ErrNoRows       = errors.New("table contains no valid data")
)

// IsErrorText reports whether s carries the upstream error prefix.
func IsErrorText(s string) bool {
	return strings.HasPrefix(s, errorPrefix)
}

// ErrorText renders err as the single tagged string written to output slots.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if IsErrorText(msg) {
		return msg
	}
	return errorPrefix + " " + msg
}

// CheckInput classifies raw stage input before any parsing happens.
func CheckInput(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyInput
	}
	if IsErrorText(raw) {
		detail := strings.TrimSpace(strings.TrimPrefix(firstLine(raw), errorPrefix))
		return fmt.Errorf("%w: %s", ErrUpstream, detail)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i != -1 {
		return s[:i]
	}
	return s
}
