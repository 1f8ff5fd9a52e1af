package core

import (
	"time"

	"pkt.systems/pslog"
)

// Deps captures optional dependencies for the core.
type Deps struct {
	EventSink EventSink
	Logger    pslog.Logger
	// Now stamps timestamped tabs. Defaults to time.Now.
	Now func() time.Time
}
