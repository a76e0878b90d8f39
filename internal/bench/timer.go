package bench

import "time"

// Timer measures wall time from its creation.
type Timer struct {
	Name  string
	start time.Time
}

func StartTimer(name string) *Timer {
	return &Timer{Name: name, start: time.Now()}
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
