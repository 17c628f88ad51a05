package easyHttp

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/trace"
)

// Option identifies one transfer parameter understood by the engine.
type Option int

// Option identifiers. Values are stable and shared with the engine.
const (
	OptURL              Option = 10002
	OptHTTPGet          Option = 80
	OptHTTPPost         Option = 10024
	OptUpload           Option = 46
	OptCustomRequest    Option = 10036
	OptPostFields       Option = 10015
	OptCopyPostFields   Option = 10165
	OptPostFieldSize    Option = 60
	OptUserAgent        Option = 10018
	OptTimeoutMS        Option = 155
	OptConnectTimeoutMS Option = 156
	OptNoSignal         Option = 99
	OptHTTPHeader       Option = 10023
	OptFollowLocation   Option = 52
	OptMaxRedirs        Option = 68
	OptHTTPAuth         Option = 107
	OptUserPwd          Option = 10005
	OptVerbose          Option = 41
	OptProxy            Option = 10004
	OptSSLVerifyPeer    Option = 64
	OptNoBody           Option = 44
	OptEncoding         Option = 10102
	OptSSLCert          Option = 10025
	OptSSLCertType      Option = 10086
	OptSSLKey           Option = 10087
	OptSSLKeyType       Option = 10088
	OptKeyPasswd        Option = 10026
	OptCAInfo           Option = 10065
	OptCAPath           Option = 10097
)

type valueKind int

const (
	kindAbsent valueKind = iota
	kindString
	kindLong
)

func (k valueKind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindLong:
		return "long"
	default:
		return "absent"
	}
}

type optionEntry struct {
	name string
	kind valueKind
}

var optionTable = map[Option]optionEntry{
	OptURL:              {"URL", kindString},
	OptHTTPGet:          {"HTTPGET", kindLong},
	OptHTTPPost:         {"HTTPPOST", kindLong},
	OptUpload:           {"UPLOAD", kindLong},
	OptCustomRequest:    {"CUSTOMREQUEST", kindString},
	OptPostFields:       {"POSTFIELDS", kindString},
	OptCopyPostFields:   {"COPYPOSTFIELDS", kindString},
	OptPostFieldSize:    {"POSTFIELDSIZE", kindLong},
	OptUserAgent:        {"USERAGENT", kindString},
	OptTimeoutMS:        {"TIMEOUT_MS", kindLong},
	OptConnectTimeoutMS: {"CONNECTTIMEOUT_MS", kindLong},
	OptNoSignal:         {"NOSIGNAL", kindLong},
	OptHTTPHeader:       {"HTTPHEADER", kindString},
	OptFollowLocation:   {"FOLLOWLOCATION", kindLong},
	OptMaxRedirs:        {"MAXREDIRS", kindLong},
	OptHTTPAuth:         {"HTTPAUTH", kindLong},
	OptUserPwd:          {"USERPWD", kindString},
	OptVerbose:          {"VERBOSE", kindLong},
	OptProxy:            {"PROXY", kindString},
	OptSSLVerifyPeer:    {"SSL_VERIFYPEER", kindLong},
	OptNoBody:           {"NOBODY", kindLong},
	OptEncoding:         {"ENCODING", kindString},
	OptSSLCert:          {"SSLCERT", kindString},
	OptSSLCertType:      {"SSLCERTTYPE", kindString},
	OptSSLKey:           {"SSLKEY", kindString},
	OptSSLKeyType:       {"SSLKEYTYPE", kindString},
	OptKeyPasswd:        {"KEYPASSWD", kindString},
	OptCAInfo:           {"CAINFO", kindString},
	OptCAPath:           {"CAPATH", kindString},
}

func (o Option) String() string {
	if entry, ok := optionTable[o]; ok {
		return entry.name
	}
	return fmt.Sprintf("Option(%d)", int(o))
}

// Value is an option value that is either absent, a string or a long.
// The zero Value is absent and is never sent to the engine, while
// LongValue(0) is always sent.
type Value struct {
	kind valueKind
	str  string
	long int64
}

func StringValue(s string) Value {
	return Value{kind: kindString, str: s}
}

func LongValue(n int64) Value {
	return Value{kind: kindLong, long: n}
}

// BoolValue encodes b as the long 1 or 0.
func BoolValue(b bool) Value {
	if b {
		return LongValue(1)
	}
	return LongValue(0)
}

func (v Value) IsSet() bool {
	return v.kind != kindAbsent
}

// setOption sends v to the engine with the call shape its kind calls for.
func (h *Handle) setOption(opt Option, v Value) error {
	entry, ok := optionTable[opt]
	if !ok {
		return errors.Wrapf(ErrUnknownOption, "%d", int(opt))
	}
	if !v.IsSet() {
		return nil
	}
	if v.kind != entry.kind {
		return errors.Wrapf(ErrOptionKind, "%s wants %s, got %s", opt, entry.kind, v.kind)
	}
	var err error
	switch v.kind {
	case kindString:
		err = h.engine.SetOptionString(opt, v.str)
	case kindLong:
		err = h.engine.SetOptionLong(opt, v.long)
	}
	if err != nil {
		return errors.Wrapf(err, "set option %s", opt)
	}
	return nil
}

type EngineOpt func(engine *fastEngine)

// WithDialFunc replaces the direct dialer of the engine. Proxy dialers
// still take precedence when a proxy is configured.
func WithDialFunc(dial fasthttp.DialFunc) EngineOpt {
	return func(engine *fastEngine) {
		engine.dial = dial
	}
}

func WithEngineClock(clk clock.Clock) EngineOpt {
	return func(engine *fastEngine) {
		engine.clock = clk
	}
}

func WithReadTimeout(duration time.Duration) EngineOpt {
	return func(engine *fastEngine) {
		engine.cfg.FastHTTPConfig.ReadTimeout = duration
	}
}

type HandleOpt func(handle *Handle)

// WithEngine makes the handle drive engine instead of a fasthttp engine.
func WithEngine(engine Engine) HandleOpt {
	return func(handle *Handle) {
		handle.engine = engine
	}
}

func WithEngineOpts(opts ...EngineOpt) HandleOpt {
	return func(handle *Handle) {
		handle.engineOpts = append(handle.engineOpts, opts...)
	}
}

func WithClock(clk clock.Clock) HandleOpt {
	return func(handle *Handle) {
		handle.clock = clk
	}
}

func WithTracer(tracer trace.Tracer) HandleOpt {
	return func(handle *Handle) {
		handle.tracer = tracer
	}
}

func WithProxyManager(manager ProxyManager) HandleOpt {
	return func(handle *Handle) {
		handle.proxyManager = manager
	}
}
