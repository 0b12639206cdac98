package tui

import (
	"fmt"

	"github.com/pders01/newsdesk/internal/debuglog"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// logSwallowed records a remote failure the UI deliberately does not show.
func logSwallowed(op string, err error, fields map[string]interface{}) {
	if err == nil {
		return
	}
	debuglog.WithFields(fields).With("op", op).Warnf("%v", err)
}
