package monitor

import "time"

// Stopwatch times one phase of a run. Started on creation.
type Stopwatch struct {
	start time.Time
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{start: time.Now()}
}

func (s *Stopwatch) Restart() {
	s.start = time.Now()
}

func (s *Stopwatch) Elapsed() time.Duration {
	return time.Since(s.start)
}
