package easyHttp

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewDefaults(t *testing.T) {
	h, _ := newRecordingHandle(t)

	assert.Equal(t, MethodGet, h.Method())
	assert.Empty(t, h.Headers())
	assert.Equal(t, DefaultMaxRetries, h.MaxRetries())
	assert.Equal(t, 0, h.Retries())
	assert.Equal(t, 0, h.ResponseCode())
	assert.NotEmpty(t, h.ID())
	assert.True(t, h.SupportsZlib())
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(zaptest.NewLogger(t), &Config{MaxRetries: -1}, WithEngine(&recordingEngine{}))
	assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)

	_, err = New(zaptest.NewLogger(t), &Config{FastHTTPConfig: FastHTTPConfig{ReadBufferSize: -5}}, WithEngine(&recordingEngine{}))
	assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)

	h, err := New(zaptest.NewLogger(t), &Config{MaxRetries: 3}, WithEngine(&recordingEngine{}))
	require.NoError(t, err)
	assert.Equal(t, 3, h.MaxRetries())
}

func TestSetMethod(t *testing.T) {
	tests := []struct {
		method Method
		want   []string
	}{
		{MethodGet, []string{"HTTPGET=1"}},
		{MethodPost, []string{"HTTPPOST=1", "POSTFIELDSIZE=0", `COPYPOSTFIELDS=""`}},
		{MethodPut, []string{"UPLOAD=1", `body=""`}},
		{MethodHead, []string{"NOBODY=1"}},
		{"delete", []string{`CUSTOMREQUEST="DELETE"`}},
		{"PATCH", []string{`CUSTOMREQUEST="PATCH"`}},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			h, engine := newRecordingHandle(t)
			require.NoError(t, h.SetMethod(tt.method))
			assert.Equal(t, tt.want, engine.calls)
		})
	}
}

func TestSetMethodPutStripsUploadHeaders(t *testing.T) {
	h, engine := newRecordingHandle(t)

	require.NoError(t, h.SetMethod(MethodPut))
	assert.Equal(t, []byte{}, engine.body)
	assert.Equal(t, map[string]string{"Transfer-Encoding": "", "Expect": ""}, h.Headers())
}

func TestSetMethodKeepsExistingBody(t *testing.T) {
	h, engine := newRecordingHandle(t)

	require.NoError(t, h.SetRequestBody([]byte("abc")))
	engine.calls = nil
	require.NoError(t, h.SetMethod(MethodPost))
	assert.Equal(t, []string{"HTTPPOST=1"}, engine.calls)

	engine.calls = nil
	require.NoError(t, h.SetMethod(MethodPut))
	assert.Equal(t, []string{"UPLOAD=1", `body="abc"`}, engine.calls)
	assert.Equal(t, map[string]string{"Transfer-Encoding": "", "Expect": ""}, h.Headers())
}

func TestSetRequestBody(t *testing.T) {
	t.Run("post", func(t *testing.T) {
		h, engine := newRecordingHandle(t)
		require.NoError(t, h.SetMethod(MethodPost))
		engine.calls = nil

		require.NoError(t, h.SetRequestBody([]byte("name=bob")))
		assert.Equal(t, []string{"POSTFIELDSIZE=8", `COPYPOSTFIELDS="name=bob"`}, engine.calls)
		assert.Equal(t, []byte("name=bob"), h.RequestBody())
	})
	t.Run("put", func(t *testing.T) {
		h, engine := newRecordingHandle(t)
		require.NoError(t, h.SetMethod(MethodPut))
		engine.calls = nil

		require.NoError(t, h.SetRequestBody([]byte("payload")))
		assert.Equal(t, []string{`body="payload"`}, engine.calls)
		assert.Equal(t, []byte("payload"), engine.body)
	})
}

func TestSetParams(t *testing.T) {
	params := Params{}.
		Add("a", Scalar("1")).
		Add("b", List("x", "y")).
		Add("c", Map("d", "2"))

	t.Run("get appends query", func(t *testing.T) {
		h, engine := newRecordingHandle(t)
		require.NoError(t, h.SetURL("http://h/"))
		engine.calls = nil

		require.NoError(t, h.SetParams(params))
		assert.Equal(t, "http://h/?a=1&b=x&b=y&c[d]=2", h.URL())
		assert.Equal(t, []string{`URL="http://h/?a=1&b=x&b=y&c[d]=2"`}, engine.calls)
		assert.Equal(t, params, h.Params())
	})
	t.Run("post sets body", func(t *testing.T) {
		h, engine := newRecordingHandle(t)
		require.NoError(t, h.SetURL("http://h/"))
		require.NoError(t, h.SetMethod(MethodPost))
		engine.calls = nil

		require.NoError(t, h.SetParams(params))
		assert.Equal(t, "http://h/", h.URL())
		assert.Equal(t, []string{"POSTFIELDSIZE=18", `COPYPOSTFIELDS="a=1&b=x&b=y&c[d]=2"`}, engine.calls)
	})
	t.Run("get appends to the current url", func(t *testing.T) {
		h, _ := newRecordingHandle(t)
		require.NoError(t, h.SetURL("http://h/"))

		require.NoError(t, h.SetParams(Params{}.Add("a", Scalar("1"))))
		require.NoError(t, h.SetParams(Params{}.Add("b", Scalar("2"))))
		assert.Equal(t, "http://h/?a=1?b=2", h.URL())

		require.NoError(t, h.SetURL("http://h/"))
		require.NoError(t, h.SetParams(Params{}.Add("b", Scalar("2"))))
		assert.Equal(t, "http://h/?b=2", h.URL())
	})
}

func TestSetAuth(t *testing.T) {
	h, engine := newRecordingHandle(t)

	require.NoError(t, h.SetAuth(Auth{Username: "user", Password: "pass"}))
	assert.Equal(t, []string{`USERPWD="user:pass"`}, engine.calls)

	engine.calls = nil
	require.NoError(t, h.SetAuth(Auth{Username: "user", Password: "pass", Methods: AuthAuto}))
	assert.Equal(t, []string{`USERPWD="user:pass"`, "HTTPAUTH=31"}, engine.calls)

	engine.calls = nil
	require.NoError(t, h.SetAuth(Auth{Username: "user", Password: "pass", Methods: AuthDigest | AuthNTLM}))
	assert.Equal(t, []string{`USERPWD="user:pass"`, "HTTPAUTH=10"}, engine.calls)
}

func TestScalarSetters(t *testing.T) {
	h, engine := newRecordingHandle(t)

	require.NoError(t, h.SetProxy("socks5://127.0.0.1:9050"))
	require.NoError(t, h.SetVerbose(true))
	require.NoError(t, h.SetVerbose(false))
	require.NoError(t, h.SetFollowLocation(true))
	require.NoError(t, h.SetFollowLocation(false))
	require.NoError(t, h.SetMaxRedirects(3))
	require.NoError(t, h.SetUserAgent("easy/1.0"))
	require.NoError(t, h.DisableSSLPeerVerification())

	assert.Equal(t, []string{
		`PROXY="socks5://127.0.0.1:9050"`,
		"VERBOSE=1",
		"VERBOSE=0",
		"FOLLOWLOCATION=1",
		"FOLLOWLOCATION=0",
		"MAXREDIRS=3",
		`USERAGENT="easy/1.0"`,
		"SSL_VERIFYPEER=0",
	}, engine.calls)
}

func TestTimeoutSetters(t *testing.T) {
	h, engine := newRecordingHandle(t)

	require.NoError(t, h.SetConnectTimeout(250*time.Millisecond))
	require.NoError(t, h.SetTimeout(2*time.Second))
	assert.Equal(t, []string{"NOSIGNAL=1", "CONNECTTIMEOUT_MS=250", "NOSIGNAL=1", "TIMEOUT_MS=2000"}, engine.calls)
	assert.Equal(t, 250*time.Millisecond, h.ConnectTimeout())
	assert.Equal(t, 2*time.Second, h.Timeout())
}

func TestSSLSetters(t *testing.T) {
	h, engine := newRecordingHandle(t)

	require.NoError(t, h.SetSSLCert("/etc/cert.pem"))
	require.NoError(t, h.SetSSLKey("/etc/key.pem"))
	require.NoError(t, h.SetSSLKeyPassword("secret"))
	require.NoError(t, h.SetSSLCACert("/etc/ca.pem"))
	require.NoError(t, h.SetSSLCAPath("/etc/ssl/certs"))
	assert.Equal(t, []string{
		`SSLCERT="/etc/cert.pem"`,
		`SSLKEY="/etc/key.pem"`,
		`KEYPASSWD="secret"`,
		`CAINFO="/etc/ca.pem"`,
		`CAPATH="/etc/ssl/certs"`,
	}, engine.calls)
}

func TestSSLCertType(t *testing.T) {
	for _, certType := range []string{"PEM", "DER"} {
		t.Run(certType, func(t *testing.T) {
			h, engine := newRecordingHandle(t)
			require.NoError(t, h.SetSSLCertType(certType))
			assert.Equal(t, []string{`SSLCERTTYPE="` + certType + `"`}, engine.calls)
		})
	}
	for _, certType := range []string{"XYZ", "ENG", "pem"} {
		t.Run(certType, func(t *testing.T) {
			h, engine := newRecordingHandle(t)
			err := h.SetSSLCertType(certType)
			assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)
			assert.Empty(t, engine.calls)
		})
	}
	t.Run("empty keeps default", func(t *testing.T) {
		h, engine := newRecordingHandle(t)
		require.NoError(t, h.SetSSLCertType(""))
		assert.Empty(t, engine.calls)
	})
}

func TestSSLKeyType(t *testing.T) {
	for _, keyType := range []string{"PEM", "DER", "ENG"} {
		t.Run(keyType, func(t *testing.T) {
			h, engine := newRecordingHandle(t)
			require.NoError(t, h.SetSSLKeyType(keyType))
			assert.Equal(t, []string{`SSLKEYTYPE="` + keyType + `"`}, engine.calls)
		})
	}
	h, engine := newRecordingHandle(t)
	err := h.SetSSLKeyType("P12")
	assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)
	assert.Empty(t, engine.calls)
}

func TestHeaders(t *testing.T) {
	h, _ := newRecordingHandle(t)

	h.SetHeader("Accept", "text/html")
	h.SetHeader("Accept", "application/json")
	assert.Equal(t, map[string]string{"Accept": "application/json"}, h.Headers())

	src := map[string]string{"X-Token": "t"}
	h.SetHeaders(src)
	src["X-Other"] = "o"
	assert.Equal(t, map[string]string{"X-Token": "t"}, h.Headers())
}

func TestAuthMethodString(t *testing.T) {
	assert.Equal(t, "none", AuthMethod(0).String())
	assert.Equal(t, "basic|ntlm", (AuthBasic | AuthNTLM).String())
	assert.Equal(t, AuthMethod(31), AuthAuto)
}

func TestAuthSchemeFromChallenge(t *testing.T) {
	tests := map[string]AuthMethod{
		`Basic realm="x"`:         AuthBasic,
		`Digest realm="x", qop=1`: AuthDigest,
		"Negotiate":               AuthGSSNegotiate,
		"NTLM":                    AuthNTLM,
		"Bearer":                  0,
		"":                        0,
	}
	for challenge, want := range tests {
		assert.Equal(t, want, authSchemeFromChallenge(challenge), challenge)
	}
}
