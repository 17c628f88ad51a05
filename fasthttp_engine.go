package easyHttp

import (
	"bytes"
	"context"
	"encoding/base64"
	"net"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"
	"go.uber.org/zap"
)

const (
	engineVersion = "fasthttp zlib brotli"

	// defaultMaxRedirects caps redirect hops when MAXREDIRS is -1.
	defaultMaxRedirects = 50

	defaultAcceptEncoding = "gzip, deflate, br"
	formContentType       = "application/x-www-form-urlencoded"
)

type transferMode int

const (
	modeGet transferMode = iota
	modePost
	modeUpload
	modeNoBody
)

type fastEngine struct {
	log   *zap.Logger
	cfg   Config
	clock clock.Clock
	dial  fasthttp.DialFunc

	url            string
	mode           transferMode
	customRequest  string
	postFields     []byte
	postFieldSize  int64
	uploadBody     []byte
	userAgent      string
	encoding       string
	encodingSet    bool
	timeout        time.Duration
	connectTimeout time.Duration
	followLocation bool
	maxRedirects   int64
	userPwd        string
	userPwdSet     bool
	authMask       AuthMethod
	verbose        bool
	proxy          string
	tls            tlsOptions

	pendingHeaders []string
	headers        []string

	result transferResult
}

type transferResult struct {
	responseCode int
	totalTime    float64
	effectiveURL string
	authAvail    AuthMethod
	header       []byte
	body         []byte
}

// NewFastEngine returns an Engine that runs every transfer on a fresh
// fasthttp.Client tuned by cfg.FastHTTPConfig.
func NewFastEngine(log *zap.Logger, cfg *Config, opts ...EngineOpt) Engine {
	if cfg == nil {
		cfg = &Config{}
	}
	e := &fastEngine{
		log:           log.Named("fasthttp_engine"),
		cfg:           *cfg,
		clock:         clock.New(),
		postFieldSize: -1,
		maxRedirects:  -1,
		tls:           tlsOptions{verifyPeer: true},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *fastEngine) SetOptionString(opt Option, value string) error {
	switch opt {
	case OptURL:
		e.url = value
	case OptCustomRequest:
		e.customRequest = value
	case OptPostFields, OptCopyPostFields:
		e.postFields = []byte(value)
		e.mode = modePost
	case OptUserAgent:
		e.userAgent = value
	case OptHTTPHeader:
		e.AddHeader(value)
		e.CommitHeaders()
	case OptUserPwd:
		e.userPwd = value
		e.userPwdSet = true
	case OptProxy:
		e.proxy = value
	case OptEncoding:
		e.encoding = value
		e.encodingSet = true
	case OptSSLCert:
		e.tls.cert = value
	case OptSSLCertType:
		e.tls.certType = value
	case OptSSLKey:
		e.tls.key = value
	case OptSSLKeyType:
		e.tls.keyType = value
	case OptKeyPasswd:
		e.tls.keyPassword = value
	case OptCAInfo:
		e.tls.caInfo = value
	case OptCAPath:
		e.tls.caPath = value
	default:
		return errors.Wrapf(ErrUnknownOption, "string option %s", opt)
	}
	e.log.Debug("option set", zap.Stringer("option", opt))
	return nil
}

func (e *fastEngine) SetOptionLong(opt Option, value int64) error {
	switch opt {
	case OptHTTPGet:
		if value != 0 {
			e.selectMode(modeGet)
		}
	case OptHTTPPost:
		if value != 0 {
			e.selectMode(modePost)
		}
	case OptUpload:
		if value != 0 {
			e.selectMode(modeUpload)
		} else if e.mode == modeUpload {
			e.mode = modeGet
		}
	case OptNoBody:
		if value != 0 {
			e.selectMode(modeNoBody)
		} else if e.mode == modeNoBody {
			e.mode = modeGet
		}
	case OptPostFieldSize:
		e.postFieldSize = value
	case OptTimeoutMS:
		e.timeout = time.Duration(value) * time.Millisecond
	case OptConnectTimeoutMS:
		e.connectTimeout = time.Duration(value) * time.Millisecond
	case OptNoSignal:
		// Go timeouts never rely on signals.
	case OptFollowLocation:
		e.followLocation = value != 0
	case OptMaxRedirs:
		e.maxRedirects = value
	case OptHTTPAuth:
		e.authMask = AuthMethod(value)
	case OptVerbose:
		e.verbose = value != 0
	case OptSSLVerifyPeer:
		e.tls.verifyPeer = value != 0
	default:
		return errors.Wrapf(ErrUnknownOption, "long option %s", opt)
	}
	e.log.Debug("option set", zap.Stringer("option", opt), zap.Int64("value", value))
	return nil
}

// selectMode switches to one of the named verbs, dropping any custom
// request verb.
func (e *fastEngine) selectMode(mode transferMode) {
	e.mode = mode
	e.customRequest = ""
}

func (e *fastEngine) AddHeader(line string) {
	e.pendingHeaders = append(e.pendingHeaders, line)
}

func (e *fastEngine) CommitHeaders() {
	e.headers = e.pendingHeaders
	e.pendingHeaders = nil
}

func (e *fastEngine) SetBody(body []byte) {
	e.uploadBody = body
}

func (e *fastEngine) Version() string {
	return engineVersion
}

func (e *fastEngine) Reset() {
	e.result = transferResult{}
}

func (e *fastEngine) ResponseHeader() []byte {
	return e.result.header
}

func (e *fastEngine) ResponseBody() []byte {
	return e.result.body
}

func (e *fastEngine) InfoString(info Info) string {
	switch info {
	case InfoEffectiveURL:
		return e.result.effectiveURL
	}
	return ""
}

func (e *fastEngine) InfoLong(info Info) int64 {
	switch info {
	case InfoResponseCode:
		return int64(e.result.responseCode)
	case InfoHTTPAuthAvail:
		return int64(e.result.authAvail)
	}
	return 0
}

func (e *fastEngine) InfoDouble(info Info) float64 {
	switch info {
	case InfoTotalTime:
		return e.result.totalTime
	}
	return 0
}

func (e *fastEngine) Perform(ctx context.Context) error {
	e.result = transferResult{}
	start := e.clock.Now()
	defer func() {
		e.result.totalTime = e.clock.Since(start).Seconds()
	}()

	if e.url == "" {
		return errors.Wrap(ErrInvalidArgument, "no url set")
	}
	cli, err := e.getClient()
	if err != nil {
		return err
	}
	defer cli.CloseIdleConnections()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)
	e.prepareRequest(req, resp)

	var deadline time.Time
	if e.timeout > 0 {
		deadline = time.Now().Add(e.timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	host := string(req.URI().Host())
	maxRedirects := int(e.maxRedirects)
	if maxRedirects < 0 {
		maxRedirects = defaultMaxRedirects
	}
	for redirects := 0; ; redirects++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "transfer cancelled")
		}
		if e.verbose {
			e.log.Info("> request", zap.ByteString("method", req.Header.Method()), zap.String("uri", req.URI().String()))
		}
		if deadline.IsZero() {
			err = cli.Do(req, resp)
		} else {
			err = cli.DoDeadline(req, resp, deadline)
		}
		if err != nil {
			return errors.Wrapf(err, "%s %s", req.Header.Method(), req.URI().String())
		}
		if e.verbose {
			e.log.Info("< response", zap.Int("status", resp.StatusCode()), zap.Int("body_size", len(resp.Body())))
		}

		status := resp.StatusCode()
		location := resp.Header.Peek(fasthttp.HeaderLocation)
		if !e.followLocation || !fasthttp.StatusCodeIsRedirect(status) || len(location) == 0 {
			break
		}
		if redirects >= maxRedirects {
			_ = e.record(req, resp)
			return errors.Wrapf(ErrTooManyRedirects, "after %d redirects", redirects)
		}
		req.URI().UpdateBytes(location)
		if string(req.URI().Host()) != host {
			// Credentials stay with the host they were set for.
			req.Header.Del(fasthttp.HeaderAuthorization)
		}
		if status == fasthttp.StatusSeeOther ||
			(bytes.Equal(req.Header.Method(), []byte(fasthttp.MethodPost)) &&
				(status == fasthttp.StatusMovedPermanently || status == fasthttp.StatusFound)) {
			req.Header.SetMethod(fasthttp.MethodGet)
			req.Header.Del(fasthttp.HeaderContentType)
			req.ResetBody()
		}
	}
	return e.record(req, resp)
}

func (e *fastEngine) getClient() (*fasthttp.Client, error) {
	tlsConfig, err := e.tlsConfig()
	if err != nil {
		return nil, err
	}
	fc := e.cfg.FastHTTPConfig
	cli := fasthttp.Client{
		ReadTimeout:                   fc.ReadTimeout,
		WriteTimeout:                  fc.WriteTimeout,
		NoDefaultUserAgentHeader:      fc.NoDefaultUserAgentHeader,
		DisableHeaderNamesNormalizing: fc.DisableHeaderNamesNormalizing,
		DisablePathNormalizing:        fc.DisablePathNormalizing,
		ReadBufferSize:                fc.ReadBufferSize,
		WriteBufferSize:               fc.WriteBufferSize,
		MaxResponseBodySize:           fc.MaxResponseBodySize,
		MaxConnWaitTimeout:            fc.MaxConnWaitTimeout,

		MaxConnsPerHost:     fc.MaxConnsPerHost,
		MaxIdleConnDuration: fc.MaxIdleConnDuration,
		MaxConnDuration:     fc.MaxConnDuration,
		DialDualStack:       fc.DialDualStack,
		TLSConfig:           tlsConfig,
	}
	cli.Dial = e.getDialer()
	return &cli, nil
}

// getDialer picks the proxy dialer when a proxy is set, then the injected
// dialer, then a plain dialer bounded by the connect timeout. nil means
// the fasthttp default.
func (e *fastEngine) getDialer() fasthttp.DialFunc {
	if e.proxy != "" {
		timeout := e.connectTimeout
		if timeout == 0 {
			timeout = e.cfg.ProxyDialTimeOut
		}
		if strings.HasPrefix(e.proxy, "socks") {
			return socksDialFunc(e.proxy, timeout)
		}
		return fasthttpproxy.FasthttpHTTPDialerTimeout(strings.TrimPrefix(e.proxy, "http://"), timeout)
	}
	if e.dial != nil {
		return e.dial
	}
	if e.connectTimeout > 0 {
		timeout := e.connectTimeout
		if e.cfg.FastHTTPConfig.DialDualStack {
			return func(addr string) (net.Conn, error) {
				return fasthttp.DialDualStackTimeout(addr, timeout)
			}
		}
		return func(addr string) (net.Conn, error) {
			return fasthttp.DialTimeout(addr, timeout)
		}
	}
	return nil
}

func (e *fastEngine) prepareRequest(req *fasthttp.Request, resp *fasthttp.Response) {
	req.SetConnectionClose()
	req.SetRequestURI(e.url)

	method := fasthttp.MethodGet
	switch e.mode {
	case modePost:
		method = fasthttp.MethodPost
		body := e.postFields
		if e.postFieldSize >= 0 && e.postFieldSize < int64(len(body)) {
			body = body[:e.postFieldSize]
		}
		req.SetBody(body)
		req.Header.SetContentType(formContentType)
	case modeUpload:
		method = fasthttp.MethodPut
		req.SetBody(e.uploadBody)
	case modeNoBody:
		method = fasthttp.MethodHead
		resp.SkipBody = true
	}
	if e.customRequest != "" {
		method = e.customRequest
	}
	req.Header.SetMethod(method)

	if e.userAgent != "" {
		req.Header.SetUserAgent(e.userAgent)
	}
	if e.encodingSet {
		encoding := e.encoding
		if encoding == "" {
			encoding = defaultAcceptEncoding
		}
		req.Header.Set(fasthttp.HeaderAcceptEncoding, encoding)
	}
	if e.userPwdSet {
		mask := e.authMask
		if mask == 0 {
			mask = AuthBasic
		}
		if mask.Has(AuthBasic) {
			req.Header.Set(fasthttp.HeaderAuthorization, "Basic "+base64.StdEncoding.EncodeToString([]byte(e.userPwd)))
		}
	}
	for _, line := range e.headers {
		key, value := splitHeaderLine(line)
		if key == "" {
			continue
		}
		if value == "" {
			req.Header.Del(key)
			continue
		}
		req.Header.Set(key, value)
	}
}

// record stores the results of a completed exchange. The decoding error,
// if any, is returned after the status is recorded.
func (e *fastEngine) record(req *fasthttp.Request, resp *fasthttp.Response) error {
	e.result.responseCode = resp.StatusCode()
	e.result.effectiveURL = req.URI().String()
	e.result.header = append([]byte(nil), resp.Header.Header()...)

	switch e.result.responseCode {
	case fasthttp.StatusUnauthorized:
		e.result.authAvail = availableAuth(resp, fasthttp.HeaderWWWAuthenticate)
	case fasthttp.StatusProxyAuthRequired:
		e.result.authAvail = availableAuth(resp, fasthttp.HeaderProxyAuthenticate)
	}

	body, err := e.decodeBody(resp)
	if err != nil {
		e.result.body = append([]byte(nil), resp.Body()...)
		return errors.Wrap(err, "decode response body")
	}
	e.result.body = append([]byte(nil), body...)
	return nil
}

func (e *fastEngine) decodeBody(resp *fasthttp.Response) ([]byte, error) {
	if !e.encodingSet {
		return resp.Body(), nil
	}
	contentEncoding := resp.Header.Peek(fasthttp.HeaderContentEncoding)
	switch {
	case bytes.EqualFold(contentEncoding, []byte("gzip")):
		return resp.BodyGunzip()
	case bytes.EqualFold(contentEncoding, []byte("deflate")):
		return resp.BodyInflate()
	case bytes.EqualFold(contentEncoding, []byte("br")):
		return resp.BodyUnbrotli()
	default:
		return resp.Body(), nil
	}
}

func availableAuth(resp *fasthttp.Response, header string) AuthMethod {
	var avail AuthMethod
	resp.Header.VisitAll(func(key, value []byte) {
		if strings.EqualFold(string(key), header) {
			avail |= authSchemeFromChallenge(string(value))
		}
	})
	return avail
}

func splitHeaderLine(line string) (key, value string) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
}
