package repository

import (
	"errors"
	"fmt"

	"github.com/JonnyWalker81/moodtrack/backend/pkg/supabase"
)

// ErrRejected is matched by store errors that a retry cannot fix, such as a
// malformed filter or a missing table
var ErrRejected = errors.New("rejected by store")

// supabaseError wraps a failed PostgREST call, marking non-temporary
// responses with ErrRejected
func supabaseError(msg string, err error) error {
	var apiErr *supabase.Error
	if errors.As(err, &apiErr) && !apiErr.Temporary() {
		return fmt.Errorf("%s: %w: %w", msg, ErrRejected, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
