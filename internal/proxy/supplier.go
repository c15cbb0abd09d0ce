package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// ProxySupplier manages a pool of proxies with round-robin selection
type ProxySupplier interface {
	Get() string
}

type proxySupplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

const maxParallelChecks = 16

// NewProxySupplier keeps only the proxies that can reach testURL, in their
// configured order
func NewProxySupplier(ctx context.Context, proxies []string, testURL string) ProxySupplier {
	if len(proxies) == 0 {
		return &proxySupplier{proxies: []string{}}
	}

	log.Infof("🔧 Testing %d proxies against %s", len(proxies), testURL)

	valid := make([]bool, len(proxies))
	semaphore := make(chan struct{}, maxParallelChecks)
	var wg sync.WaitGroup

	for i, proxyURL := range proxies {
		wg.Add(1)

		go func(index int, proxy string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			valid[index] = isProxyValid(ctx, proxy, testURL)
		}(i, proxyURL)
	}

	wg.Wait()

	validProxies := make([]string, 0, len(proxies))
	for i, proxyURL := range proxies {
		if valid[i] {
			validProxies = append(validProxies, proxyURL)
		} else {
			log.Warnf("⚠️ Proxy %s is not working, skipping", proxyURL)
		}
	}

	log.Infof("ProxySupplier initialized with %d working proxies out of %d tested", len(validProxies), len(proxies))

	return &proxySupplier{proxies: validProxies}
}

// Get returns the next proxy URL in round-robin fashion, or "" when the
// pool is empty
func (p *proxySupplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxy := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)

	return proxy
}

func isProxyValid(ctx context.Context, proxyURL, testURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetProxy(proxyURL)
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		Get(testURL)

	if err != nil {
		log.Debugf("Proxy test failed for %s: %v", proxyURL, err)
		return false
	}

	if resp.IsError() {
		log.Debugf("Proxy test failed for %s with status: %s", proxyURL, resp.Status())
		return false
	}

	return true
}
