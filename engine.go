package easyHttp

import "context"

// Engine performs the network side of a transfer. A Handle only
// configures it through options and reads results back; it never does
// I/O on its own.
//
// Implementations serve one handle at a time and need not be safe for
// concurrent use.
type Engine interface {
	SetOptionString(opt Option, value string) error
	SetOptionLong(opt Option, value int64) error

	// AddHeader queues one "Key: value" line. CommitHeaders replaces the
	// active header set with the queued lines.
	AddHeader(line string)
	CommitHeaders()

	// SetBody sets the upload body used in upload mode.
	SetBody(body []byte)

	// Perform runs the transfer synchronously. A non-nil error means no
	// response was obtained.
	Perform(ctx context.Context) error

	InfoString(info Info) string
	InfoLong(info Info) int64
	InfoDouble(info Info) float64

	ResponseHeader() []byte
	ResponseBody() []byte

	// Reset drops the results of the last transfer. Options are kept.
	Reset()

	Version() string
}
