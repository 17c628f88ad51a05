package easyHttp

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// minUpdateInterval is the shortest refresh period NewProxyManager accepts.
const minUpdateInterval = time.Minute

// ProxyRecord is one entry of a JSON proxy list.
type ProxyRecord struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Scheme   string `json:"scheme"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// URI renders r the way the engine's PROXY option expects it: socks
// proxies keep their scheme, http proxies are bare host:port.
func (r ProxyRecord) URI() string {
	hostPort := r.Host + ":" + r.Port
	if r.Username != "" {
		hostPort = r.Username + ":" + r.Password + "@" + hostPort
	}
	switch r.Scheme {
	case "socks4", "socks4a", "socks5":
		return r.Scheme + "://" + hostPort
	default:
		return hostPort
	}
}

type proxyManager struct {
	log          *zap.Logger
	mu           sync.Mutex
	proxies      []string
	lastProxyIdx int
}

// ProxyManager hands out proxies for consecutive transfers.
type ProxyManager interface {
	// GetProxy returns the next proxy, or "" when the list is empty.
	GetProxy() string
}

// ProxyFun loads a list of proxy URIs.
type ProxyFun func() ([]string, error)

func ProxyFromList(proxyList []string) ProxyFun {
	return func() ([]string, error) {
		return proxyList, nil
	}
}

// ProxyFromFile reads a JSON array of ProxyRecord from filePath on every
// call.
func ProxyFromFile(filePath string) ProxyFun {
	return func() ([]string, error) {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, errors.Wrap(err, "read proxy list")
		}
		return parseProxyRecords(data)
	}
}

// ProxyFromURL fetches a JSON array of ProxyRecord from url on every call.
func ProxyFromURL(url string) ProxyFun {
	return func() ([]string, error) {
		status, body, err := fasthttp.Get(nil, url)
		if err != nil {
			return nil, errors.Wrap(err, "fetch proxy list")
		}
		if status != fasthttp.StatusOK {
			return nil, errors.Errorf("fetch proxy list: status %d", status)
		}
		return parseProxyRecords(body)
	}
}

func parseProxyRecords(data []byte) ([]string, error) {
	var records []ProxyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "decode proxy list")
	}
	proxyList := make([]string, 0, len(records))
	for _, r := range records {
		proxyList = append(proxyList, r.URI())
	}
	return proxyList, nil
}

// NewProxyManager loads proxies from every fun and rotates through them.
// With a non-zero updateInterval (at least a minute) the list is reloaded
// periodically until ctx is done.
func NewProxyManager(ctx context.Context, log *zap.Logger, updateInterval time.Duration, proxyFuns ...ProxyFun) ProxyManager {
	logger := log.Named("proxy_manager")
	pm := &proxyManager{
		log:          logger,
		proxies:      loadProxies(logger, proxyFuns),
		lastProxyIdx: -1,
	}
	if updateInterval != 0 {
		if updateInterval < minUpdateInterval {
			updateInterval = minUpdateInterval
		}
		go pm.updater(ctx, updateInterval, proxyFuns...)
	}
	return pm
}

func loadProxies(log *zap.Logger, proxyFuns []ProxyFun) []string {
	var proxyList []string
	for _, fun := range proxyFuns {
		tmpProxy, err := fun()
		if err != nil {
			log.Error("can not call proxy func", zap.Error(err))
			continue
		}
		proxyList = append(proxyList, tmpProxy...)
	}
	return proxyList
}

func (p *proxyManager) GetProxy() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.proxies) == 0 {
		return ""
	}
	p.lastProxyIdx = (p.lastProxyIdx + 1) % len(p.proxies)
	return p.proxies[p.lastProxyIdx]
}

func (p *proxyManager) update(proxyList []string) {
	p.mu.Lock()
	p.proxies = proxyList
	p.lastProxyIdx = -1
	p.mu.Unlock()
}

func (p *proxyManager) updater(ctx context.Context, updateInterval time.Duration, proxyFuns ...ProxyFun) {
	p.log.Info("proxy updater started", zap.Duration("interval", updateInterval))
	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.log.Info("proxy updater stopped")
			return
		case <-ticker.C:
			p.log.Info("updating proxy list")
			p.update(loadProxies(p.log, proxyFuns))
			p.log.Info("proxy list updated")
		}
	}
}
