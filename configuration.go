package easyHttp

import (
	"crypto/tls"
	"time"
)

// DefaultMaxRetries is the retry limit of a handle whose Config leaves
// MaxRetries at zero.
const DefaultMaxRetries = 40

type Config struct {
	// MaxRetries is the limit MaxRetriesReached compares against.
	// DefaultMaxRetries is used if 0.
	MaxRetries int `validate:"gte=0"`

	// ProxyDialTimeOut timeout to dial proxy when no connect timeout
	// is set on the handle
	ProxyDialTimeOut time.Duration `validate:"gte=0"`

	FastHTTPConfig FastHTTPConfig
}

// FastHTTPConfig tunes the fasthttp client the engine builds for every
// transfer. Zero values keep the fasthttp defaults.
type FastHTTPConfig struct {
	// NoDefaultUserAgentHeader drops fasthttp's User-Agent when the
	// handle sets none.
	NoDefaultUserAgentHeader bool

	// DialDualStack connects to both ipv4 and ipv6 addresses. Only
	// used by the default dialer.
	DialDualStack bool

	// TLSConfig is cloned and completed with the handle's TLS options.
	TLSConfig *tls.Config `validate:"-"`

	MaxConnsPerHost     int           `validate:"gte=0"`
	MaxIdleConnDuration time.Duration `validate:"gte=0"`
	MaxConnDuration     time.Duration `validate:"gte=0"`

	ReadBufferSize  int `validate:"gte=0"`
	WriteBufferSize int `validate:"gte=0"`

	// ReadTimeout and WriteTimeout bound single reads and writes; the
	// handle's timeout bounds the whole transfer.
	ReadTimeout  time.Duration `validate:"gte=0"`
	WriteTimeout time.Duration `validate:"gte=0"`

	// MaxResponseBodySize makes the transfer fail when exceeded. 0 means
	// unlimited.
	MaxResponseBodySize int `validate:"gte=0"`

	DisableHeaderNamesNormalizing bool
	DisablePathNormalizing        bool

	MaxConnWaitTimeout time.Duration `validate:"gte=0"`
}

func (c *Config) maxRetries() int {
	if c.MaxRetries == 0 {
		return DefaultMaxRetries
	}
	return c.MaxRetries
}
