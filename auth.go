package easyHttp

import (
	"strings"
)

// AuthMethod is a bitmask of HTTP authentication schemes.
type AuthMethod int64

const (
	AuthBasic        AuthMethod = 1
	AuthDigest       AuthMethod = 2
	AuthGSSNegotiate AuthMethod = 4
	AuthNTLM         AuthMethod = 8
	AuthDigestIE     AuthMethod = 16
	AuthAuto                    = AuthBasic | AuthDigest | AuthGSSNegotiate | AuthNTLM | AuthDigestIE
)

func (m AuthMethod) Has(flag AuthMethod) bool {
	return m&flag != 0
}

func (m AuthMethod) String() string {
	if m == 0 {
		return "none"
	}
	var names []string
	for _, f := range []struct {
		flag AuthMethod
		name string
	}{
		{AuthBasic, "basic"},
		{AuthDigest, "digest"},
		{AuthGSSNegotiate, "gssnegotiate"},
		{AuthNTLM, "ntlm"},
		{AuthDigestIE, "digest_ie"},
	} {
		if m.Has(f.flag) {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, "|")
}

// Auth holds credentials for the server. Methods is optional; when zero
// the engine default is kept.
type Auth struct {
	Username string
	Password string
	Methods  AuthMethod
}

func (a Auth) userPwd() string {
	return a.Username + ":" + a.Password
}

// authSchemeFromChallenge maps the scheme token of a WWW-Authenticate or
// Proxy-Authenticate value to its flag.
func authSchemeFromChallenge(challenge string) AuthMethod {
	scheme := strings.TrimSpace(challenge)
	if i := strings.IndexAny(scheme, " \t,"); i >= 0 {
		scheme = scheme[:i]
	}
	switch strings.ToLower(scheme) {
	case "basic":
		return AuthBasic
	case "digest":
		return AuthDigest
	case "negotiate":
		return AuthGSSNegotiate
	case "ntlm":
		return AuthNTLM
	default:
		return 0
	}
}
