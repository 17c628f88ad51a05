package easyHttp

import "time"

// Retries is the number of IncrementRetries calls since the last Reset.
func (h *Handle) Retries() int {
	return h.state.retries
}

func (h *Handle) IncrementRetries() int {
	h.state.retries++
	return h.state.retries
}

func (h *Handle) MaxRetries() int {
	return h.maxRetries
}

func (h *Handle) SetMaxRetries(n int) {
	h.maxRetries = n
}

// MaxRetriesReached reports whether a retry loop should stop. The handle
// never retries on its own.
func (h *Handle) MaxRetriesReached() bool {
	return h.state.retries >= h.maxRetries
}

// TimedOut reports whether the last transfer ran past the configured
// timeout without getting any response. A slow transfer that did get a
// status code is not reported.
func (h *Handle) TimedOut() bool {
	if h.timeout <= 0 {
		return false
	}
	elapsed := time.Duration(h.TotalTimeTaken() * float64(time.Second))
	return elapsed > h.timeout && h.ResponseCode() == 0
}

// Reset forgets retries and the last response so the handle can be
// performed again with the same configuration.
func (h *Handle) Reset() {
	h.state = execState{}
	h.engine.Reset()
}

// SetStartTime records when the caller started working on this request.
func (h *Handle) SetStartTime(t time.Time) {
	h.startTime = t
}

func (h *Handle) StartTime() time.Time {
	return h.startTime
}

// Elapsed is the time since StartTime, or 0 if no start time was set.
func (h *Handle) Elapsed() time.Duration {
	if h.startTime.IsZero() {
		return 0
	}
	return h.clock.Since(h.startTime)
}
