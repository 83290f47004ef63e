// Package clockutil wraps github.com/benbjohnson/clock so every component
// that needs "now" (playlist IDs, generated_at stamps, recent-usage
// windows) takes it through one injectable handle, matching spec.md §9's
// "all timestamps flow from a single injectable clock handle" design note.
package clockutil

import (
	"fmt"

	"github.com/benbjohnson/clock"
)

// Clock is the subset of benbjohnson/clock.Clock the pipeline needs.
type Clock = clock.Clock

// Real returns the production clock backed by the system time.
func Real() Clock { return clock.New() }

// PlaylistID derives a deterministic-format auto ID from the clock's
// current time, per spec.md §4.3: autodj-YYYYMMDD-HHMMSS.
func PlaylistID(c Clock) string {
	now := c.Now().UTC()
	return fmt.Sprintf("autodj-%s", now.Format("20060102-150405"))
}
