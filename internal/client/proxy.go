// ABOUTME: SSH+SOCKS5 jumpbox dialer for reaching the API through a bastion
// ABOUTME: Parses ssh+socks5://user@host:port?private-key=/path and dials lazily

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// proxyConfig is a parsed ssh+socks5 proxy URL
type proxyConfig struct {
	username string
	host     string
	keyPath  string
}

func parseAllProxy(allProxy string) (proxyConfig, error) {
	raw := strings.TrimPrefix(allProxy, "ssh+")
	proxyURL, err := url.Parse(raw)
	if err != nil {
		return proxyConfig{}, fmt.Errorf("invalid proxy URL: %w", err)
	}
	if proxyURL.Scheme != "socks5" {
		return proxyConfig{}, fmt.Errorf("unsupported proxy scheme %q, expected ssh+socks5", proxyURL.Scheme)
	}
	if proxyURL.Host == "" {
		return proxyConfig{}, errors.New("proxy URL missing host")
	}
	cfg := proxyConfig{host: proxyURL.Host, keyPath: proxyURL.Query().Get("private-key")}
	if proxyURL.User != nil {
		cfg.username = proxyURL.User.Username()
	}
	if cfg.keyPath == "" {
		return proxyConfig{}, errors.New("proxy URL missing required 'private-key' query param")
	}
	return cfg, nil
}

// NewProxyDialer builds a DialContextFunc tunnelling through an SSH jumpbox.
// The SSH connection is established on first dial and reused afterwards.
func NewProxyDialer(allProxy string, logger *slog.Logger) (DialContextFunc, error) {
	cfg, err := parseAllProxy(allProxy)
	if err != nil {
		return nil, err
	}
	key, err := os.ReadFile(cfg.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH private key %s: %w", cfg.keyPath, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), slog.NewLogLogger(logger.Handler(), slog.LevelDebug), time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.Mutex
	)
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.Lock()
		if dialer == nil {
			d, err := socks5Proxy.Dialer(cfg.username, string(key), cfg.host)
			if err != nil {
				mut.Unlock()
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = d
		}
		d := dialer
		mut.Unlock()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return d(network, address)
	}, nil
}
