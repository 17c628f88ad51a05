package easyHttp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Info identifies one result field the engine exposes after a transfer.
type Info int

const (
	infoString Info = 0x100000
	infoLong   Info = 0x200000
	infoDouble Info = 0x300000
	infoMask   Info = 0xf00000
)

const (
	InfoEffectiveURL  Info = infoString + 1
	InfoResponseCode  Info = infoLong + 2
	InfoTotalTime     Info = infoDouble + 3
	InfoHTTPAuthAvail Info = infoLong + 23
)

var infoNames = map[Info]string{
	InfoEffectiveURL:  "EFFECTIVE_URL",
	InfoResponseCode:  "RESPONSE_CODE",
	InfoTotalTime:     "TOTAL_TIME",
	InfoHTTPAuthAvail: "HTTPAUTH_AVAIL",
}

func (i Info) String() string {
	if name, ok := infoNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Info(%#x)", int(i))
}

func (i Info) kind() Info {
	return i & infoMask
}

// Info reads any result field, typed by the kind encoded in its
// identifier: string, int64 or float64.
func (h *Handle) Info(info Info) (interface{}, error) {
	switch info.kind() {
	case infoString:
		return h.InfoString(info), nil
	case infoLong:
		return h.InfoLong(info), nil
	case infoDouble:
		return h.InfoDouble(info), nil
	default:
		return nil, errors.Wrapf(ErrUnknownInfo, "%s", info)
	}
}

func (h *Handle) InfoString(info Info) string {
	return h.engine.InfoString(info)
}

func (h *Handle) InfoLong(info Info) int64 {
	return h.engine.InfoLong(info)
}

func (h *Handle) InfoDouble(info Info) float64 {
	return h.engine.InfoDouble(info)
}

// ResponseCode returns the status of the last completed attempt, or 0
// when no response was received.
func (h *Handle) ResponseCode() int {
	return int(h.InfoLong(InfoResponseCode))
}

// TotalTimeTaken returns the duration of the last transfer in seconds.
func (h *Handle) TotalTimeTaken() float64 {
	return h.InfoDouble(InfoTotalTime)
}

// EffectiveURL returns the URL the last transfer ended on after
// following redirects.
func (h *Handle) EffectiveURL() string {
	return h.InfoString(InfoEffectiveURL)
}

// AuthMethods returns the schemes the server offered on a 401 or 407.
func (h *Handle) AuthMethods() AuthMethod {
	return AuthMethod(h.InfoLong(InfoHTTPAuthAvail))
}
