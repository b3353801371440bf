// ABOUTME: SSH+SOCKS5 tunnel support for reaching the API through a jumpbox
// ABOUTME: Parses ssh+socks5://user@host:port?private-key=/path URLs into a dialer

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// WithAllProxy routes requests through an SSH+SOCKS5 tunnel described by
// allProxy. An empty allProxy leaves the transport untouched.
func WithAllProxy(allProxy string) (Option, error) {
	if allProxy == "" {
		return func(*Gateway) {}, nil
	}

	dial, err := socks5DialContext(allProxy)
	if err != nil {
		return nil, err
	}

	return func(g *Gateway) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DialContext = dial
		transport.Proxy = nil
		g.httpClient.Transport = transport
	}, nil
}

// socks5DialContext creates a dial function for SSH+SOCKS5 proxy connections.
// The SSH session is opened lazily on first dial and then reused.
func socks5DialContext(allProxy string) (func(ctx context.Context, network, address string) (net.Conn, error), error) {
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}
	if proxyURL.Scheme != "socks5" {
		return nil, fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	keyPath := proxyURL.Query().Get("private-key")
	if keyPath == "" {
		return nil, errors.New("proxy URL missing required 'private-key' query param")
	}

	sshKey, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH private key: %w", err)
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		haveDialer := dialer != nil
		mut.RUnlock()

		if haveDialer {
			return dialer(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(username, string(sshKey), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}, nil
}
