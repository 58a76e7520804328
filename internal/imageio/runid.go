package imageio

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewRunID generates a unique run ID based on timestamp plus a short random
// suffix, e.g. "run_20260825_141530_a3f2c1". Output artifacts for one
// invocation are grouped under this ID.
func NewRunID() string {
	ts := time.Now().Format("20060102_150405")
	short := uuid.NewString()[:6]
	return fmt.Sprintf("run_%s_%s", ts, short)
}
