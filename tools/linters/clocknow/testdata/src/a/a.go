package a

import (
	"time"
	wall "time"
)

type fakeClock struct{}

func (fakeClock) Now() time.Time { return time.Time{} }

func stampsTodo() {
	_ = time.Now() // want `time.Now\(\) bypasses clock.Clock`
}

func stampsUTC() {
	_ = time.Now().UTC() // want `time.Now\(\) bypasses clock.Clock`
}

func renamedImport() {
	_ = wall.Now() // want `time.Now\(\) bypasses clock.Clock`
}

func injected(c fakeClock) {
	_ = c.Now()
}

func measuresLatency() {
	start := time.Now() //nolint:clocknow // elapsed time only
	_ = time.Since(start)
}

func nolintAbove() {
	//nolint
	_ = time.Now()
}

func nolintList() {
	_ = time.Now() //nolint:errcheck,clocknow
}

func nolintOtherLinter() {
	_ = time.Now() //nolint:errcheck // want `time.Now\(\) bypasses clock.Clock`
}
