package easyHttp

import (
	"context"
	"fmt"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordingEngine records every directive it receives and replays a
// canned result on Perform.
type recordingEngine struct {
	calls   []string
	pending []string
	headers []string
	body    []byte

	code         int64
	totalTime    float64
	effectiveURL string
	authAvail    int64
	respHeader   []byte
	respBody     []byte
	performErr   error

	performs int
	resets   int
}

func (e *recordingEngine) SetOptionString(opt Option, value string) error {
	e.calls = append(e.calls, fmt.Sprintf("%s=%q", opt, value))
	return nil
}

func (e *recordingEngine) SetOptionLong(opt Option, value int64) error {
	e.calls = append(e.calls, fmt.Sprintf("%s=%d", opt, value))
	return nil
}

func (e *recordingEngine) AddHeader(line string) {
	e.pending = append(e.pending, line)
}

func (e *recordingEngine) CommitHeaders() {
	e.headers = e.pending
	e.pending = nil
	e.calls = append(e.calls, "commit headers")
}

func (e *recordingEngine) SetBody(body []byte) {
	e.body = body
	e.calls = append(e.calls, fmt.Sprintf("body=%q", body))
}

func (e *recordingEngine) Perform(ctx context.Context) error {
	e.performs++
	return e.performErr
}

func (e *recordingEngine) InfoString(info Info) string {
	if info == InfoEffectiveURL {
		return e.effectiveURL
	}
	return ""
}

func (e *recordingEngine) InfoLong(info Info) int64 {
	switch info {
	case InfoResponseCode:
		return e.code
	case InfoHTTPAuthAvail:
		return e.authAvail
	}
	return 0
}

func (e *recordingEngine) InfoDouble(info Info) float64 {
	if info == InfoTotalTime {
		return e.totalTime
	}
	return 0
}

func (e *recordingEngine) ResponseHeader() []byte {
	return e.respHeader
}

func (e *recordingEngine) ResponseBody() []byte {
	return e.respBody
}

func (e *recordingEngine) Reset() {
	e.resets++
	e.code = 0
	e.totalTime = 0
	e.effectiveURL = ""
	e.authAvail = 0
	e.respHeader = nil
	e.respBody = nil
}

func (e *recordingEngine) Version() string {
	return "recording zlib"
}

// newRecordingHandle returns a handle on a fresh recordingEngine with the
// constructor's own directives already dropped.
func newRecordingHandle(t *testing.T, opts ...HandleOpt) (*Handle, *recordingEngine) {
	t.Helper()
	engine := &recordingEngine{}
	opts = append([]HandleOpt{WithEngine(engine), WithClock(clock.NewMock())}, opts...)
	h, err := New(zaptest.NewLogger(t), nil, opts...)
	require.NoError(t, err)
	require.Equal(t, []string{`ENCODING=""`}, engine.calls)
	engine.calls = nil
	return h, engine
}
