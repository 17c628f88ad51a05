package easyHttp

import (
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/net/proxy"
	"h12.io/socks"
)

// socksDialFunc picks the dialer for a socks proxy URI. golang.org/x/net
// only speaks socks5, so socks4 and socks4a, and any proxy dial with a
// timeout, go through h12.io/socks.
func socksDialFunc(proxyAddr string, timeout time.Duration) fasthttp.DialFunc {
	if timeout > 0 || !strings.HasPrefix(proxyAddr, "socks5://") {
		return FasthttpSocksDialerWithTimeout(proxyAddr, timeout)
	}
	return FasthttpSocksDialer(proxyAddr)
}

// FasthttpSocksDialerWithTimeout returns a fasthttp.DialFunc that dials
// through the socks4, socks4a or socks5 proxy at proxyAddr. A positive
// timeout bounds the proxy handshake.
//
//	dial := FasthttpSocksDialerWithTimeout("socks5://localhost:9050", 3*time.Second)
func FasthttpSocksDialerWithTimeout(proxyAddr string, timeout time.Duration) fasthttp.DialFunc {
	if timeout > 0 {
		proxyAddr += "?timeout=" + timeout.String()
	}
	dial := socks.Dial(proxyAddr)
	return func(addr string) (net.Conn, error) {
		return dial("tcp", addr)
	}
}

// FasthttpSocksDialer returns a fasthttp.DialFunc that dials through the
// socks5 proxy at proxyAddr without a timeout.
func FasthttpSocksDialer(proxyAddr string) fasthttp.DialFunc {
	u, err := url.Parse(proxyAddr)
	var dialer proxy.Dialer
	if err == nil {
		dialer, err = proxy.FromURL(u, proxy.Direct)
	}
	// The engine builds its dialer along with the client, so a bad proxy
	// address is reported on the first dial.
	return func(addr string) (net.Conn, error) {
		if err != nil {
			return nil, err
		}
		return dialer.Dial("tcp", addr)
	}
}
