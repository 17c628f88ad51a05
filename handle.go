package easyHttp

import (
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Method is an HTTP verb. Any value other than the predefined ones is
// sent to the engine as a custom request, upper-cased.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
	MethodPut  Method = "PUT"
	MethodHead Method = "HEAD"
)

// Callback is notified with the handle once a transfer is classified.
type Callback func(h *Handle)

// execState is what a transfer leaves behind on the handle. Reset
// replaces it wholesale.
type execState struct {
	retries        int
	responseHeader []byte
	responseBody   []byte
	err            error
}

// Handle describes one HTTP request and drives it through an Engine.
// It can be performed any number of times; Reset clears the results of
// the previous attempt and keeps the configuration.
//
// A Handle is not safe for concurrent use.
type Handle struct {
	id           string
	log          *zap.Logger
	cfg          *Config
	engine       Engine
	engineOpts   []EngineOpt
	clock        clock.Clock
	tracer       trace.Tracer
	proxyManager ProxyManager

	method      Method
	url         string
	headers     map[string]string
	params      Params
	requestBody []byte
	bodySet     bool
	proxySet    bool

	connectTimeout time.Duration
	timeout        time.Duration
	maxRetries     int
	startTime      time.Time

	onSuccess Callback
	onFailure Callback

	state execState
}

// New builds a GET handle with an empty header set. Unless WithEngine is
// given, transfers run on a fasthttp engine configured from
// config.FastHTTPConfig.
func New(log *zap.Logger, config *Config, opts ...HandleOpt) (*Handle, error) {
	if config == nil {
		config = &Config{}
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	h := &Handle{
		id:         id,
		log:        log.Named("easy_handle").With(zap.String("handle_id", id)),
		cfg:        config,
		method:     MethodGet,
		headers:    map[string]string{},
		maxRetries: config.maxRetries(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.clock == nil {
		h.clock = clock.New()
	}
	if h.tracer == nil {
		h.tracer = noop.NewTracerProvider().Tracer("easyHttp")
	}
	if h.engine == nil {
		engineOpts := append([]EngineOpt{WithEngineClock(h.clock)}, h.engineOpts...)
		h.engine = NewFastEngine(log, config, engineOpts...)
	}
	// Ask for every content encoding the engine can decode.
	if err := h.setOption(OptEncoding, StringValue("")); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Handle) ID() string {
	return h.id
}

func (h *Handle) Method() Method {
	return h.method
}

func (h *Handle) URL() string {
	return h.url
}

func (h *Handle) Params() Params {
	return h.params
}

func (h *Handle) RequestBody() []byte {
	return h.requestBody
}

// Headers returns the live header mapping; changes to it are sent on
// the next Perform.
func (h *Handle) Headers() map[string]string {
	return h.headers
}

func (h *Handle) SetURL(url string) error {
	h.url = url
	return h.setOption(OptURL, StringValue(url))
}

// SetMethod selects the verb. POST and PUT start with an empty body
// unless one was already set, in which case PUT uploads that body. HEAD
// skips the response body.
func (h *Handle) SetMethod(method Method) error {
	method = Method(strings.ToUpper(string(method)))
	h.method = method
	switch method {
	case MethodGet:
		return h.setOption(OptHTTPGet, LongValue(1))
	case MethodPost:
		if err := h.setOption(OptHTTPPost, LongValue(1)); err != nil {
			return err
		}
		if !h.bodySet {
			return h.SetPostData(nil)
		}
		return nil
	case MethodPut:
		if err := h.setOption(OptUpload, LongValue(1)); err != nil {
			return err
		}
		if !h.bodySet {
			return h.SetRequestBody([]byte{})
		}
		h.setUploadBody(h.requestBody)
		return nil
	case MethodHead:
		return h.setOption(OptNoBody, LongValue(1))
	default:
		return h.setOption(OptCustomRequest, StringValue(string(method)))
	}
}

// SetHeaders replaces the header mapping.
func (h *Handle) SetHeaders(headers map[string]string) {
	h.headers = make(map[string]string, len(headers))
	for k, v := range headers {
		h.headers[k] = v
	}
}

func (h *Handle) SetHeader(key, value string) {
	h.headers[key] = value
}

// SetParams encodes params into the post data for POST, or appends them
// to the URL as a query string otherwise. The query is appended to the URL
// as it stands, so a second call or a URL that already carries a query
// yields url?a=1?b=2; set the full URL again before re-encoding. Set the
// method and URL first.
func (h *Handle) SetParams(params Params) error {
	h.params = params
	encoded := params.Encode()
	if h.method == MethodPost {
		return h.SetPostData([]byte(encoded))
	}
	return h.SetURL(h.url + "?" + encoded)
}

// SetRequestBody sets the raw body, bypassing params. PUT bodies are
// uploaded as is, without chunking or Expect; any other method posts it.
func (h *Handle) SetRequestBody(body []byte) error {
	h.requestBody = body
	h.bodySet = true
	if h.method == MethodPut {
		h.setUploadBody(body)
		return nil
	}
	return h.SetPostData(body)
}

// setUploadBody hands body to the engine as is, without chunking or
// Expect.
func (h *Handle) setUploadBody(body []byte) {
	h.engine.SetBody(body)
	h.headers["Transfer-Encoding"] = ""
	h.headers["Expect"] = ""
}

// SetPostData sends the post body together with its size.
func (h *Handle) SetPostData(data []byte) error {
	if err := h.setOption(OptPostFieldSize, LongValue(int64(len(data)))); err != nil {
		return err
	}
	return h.setOption(OptCopyPostFields, StringValue(string(data)))
}

func (h *Handle) SetProxy(proxy string) error {
	h.proxySet = proxy != ""
	return h.setOption(OptProxy, StringValue(proxy))
}

func (h *Handle) SetAuth(auth Auth) error {
	if err := h.setOption(OptUserPwd, StringValue(auth.userPwd())); err != nil {
		return err
	}
	if auth.Methods != 0 {
		return h.setOption(OptHTTPAuth, LongValue(int64(auth.Methods)))
	}
	return nil
}

func (h *Handle) SetVerbose(verbose bool) error {
	return h.setOption(OptVerbose, BoolValue(verbose))
}

func (h *Handle) SetFollowLocation(follow bool) error {
	return h.setOption(OptFollowLocation, BoolValue(follow))
}

func (h *Handle) SetMaxRedirects(redirects int) error {
	return h.setOption(OptMaxRedirs, LongValue(int64(redirects)))
}

// SetConnectTimeout bounds the connection phase. Sub-millisecond parts
// of d are dropped.
func (h *Handle) SetConnectTimeout(d time.Duration) error {
	h.connectTimeout = d
	if err := h.setOption(OptNoSignal, LongValue(1)); err != nil {
		return err
	}
	return h.setOption(OptConnectTimeoutMS, LongValue(d.Milliseconds()))
}

// SetTimeout bounds the whole transfer. TimedOut reports against it.
func (h *Handle) SetTimeout(d time.Duration) error {
	h.timeout = d
	if err := h.setOption(OptNoSignal, LongValue(1)); err != nil {
		return err
	}
	return h.setOption(OptTimeoutMS, LongValue(d.Milliseconds()))
}

func (h *Handle) Timeout() time.Duration {
	return h.timeout
}

func (h *Handle) ConnectTimeout() time.Duration {
	return h.connectTimeout
}

func (h *Handle) SetUserAgent(userAgent string) error {
	return h.setOption(OptUserAgent, StringValue(userAgent))
}

func (h *Handle) DisableSSLPeerVerification() error {
	return h.setOption(OptSSLVerifyPeer, LongValue(0))
}

// SetSSLCert sets the client certificate file. It is read as PEM unless
// SetSSLCertType says otherwise.
func (h *Handle) SetSSLCert(cert string) error {
	return h.setOption(OptSSLCert, StringValue(cert))
}

// SetSSLCertType sets the certificate format, PEM or DER. An empty type
// keeps the engine default.
func (h *Handle) SetSSLCertType(certType string) error {
	if certType == "" {
		return nil
	}
	if err := validateOneOf("ssl cert type", certType, sslCertTypes); err != nil {
		return err
	}
	return h.setOption(OptSSLCertType, StringValue(certType))
}

func (h *Handle) SetSSLKey(key string) error {
	return h.setOption(OptSSLKey, StringValue(key))
}

// SetSSLKeyType sets the private key format, PEM, DER or ENG. An empty
// type keeps the engine default.
func (h *Handle) SetSSLKeyType(keyType string) error {
	if keyType == "" {
		return nil
	}
	if err := validateOneOf("ssl key type", keyType, sslKeyTypes); err != nil {
		return err
	}
	return h.setOption(OptSSLKeyType, StringValue(keyType))
}

func (h *Handle) SetSSLKeyPassword(password string) error {
	return h.setOption(OptKeyPasswd, StringValue(password))
}

// SetSSLCACert sets a file holding the certificates to verify the peer
// with.
func (h *Handle) SetSSLCACert(caCert string) error {
	return h.setOption(OptCAInfo, StringValue(caCert))
}

// SetSSLCAPath sets a directory of certificates to verify the peer with.
func (h *Handle) SetSSLCAPath(caPath string) error {
	return h.setOption(OptCAPath, StringValue(caPath))
}

// SupportsZlib reports whether the engine can decode deflate and gzip
// bodies.
func (h *Handle) SupportsZlib() bool {
	return strings.Contains(h.engine.Version(), "zlib")
}
