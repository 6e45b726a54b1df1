// ABOUTME: Tests for ssh+socks5 proxy URL parsing
// ABOUTME: Dialing is not exercised; only configuration errors are checked

package client

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseAllProxy(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		want    proxyConfig
	}{
		{
			name: "full",
			raw:  "ssh+socks5://ubuntu@jumpbox.example.com:22?private-key=/tmp/key",
			want: proxyConfig{username: "ubuntu", host: "jumpbox.example.com:22", keyPath: "/tmp/key"},
		},
		{name: "missing key", raw: "ssh+socks5://ubuntu@jumpbox:22", wantErr: true},
		{name: "wrong scheme", raw: "http://jumpbox:22?private-key=/tmp/key", wantErr: true},
		{name: "missing host", raw: "ssh+socks5://?private-key=/tmp/key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAllProxy(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNewProxyDialer_UnreadableKey(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := NewProxyDialer("ssh+socks5://u@h:22?private-key="+missing, nil); err == nil {
		t.Error("expected error for missing key file")
	}
}

func TestNewProxyDialer_ReadsKey(t *testing.T) {
	key := filepath.Join(t.TempDir(), "id")
	if err := os.WriteFile(key, []byte("not really a key"), 0600); err != nil {
		t.Fatal(err)
	}
	dial, err := NewProxyDialer("ssh+socks5://u@h:22?private-key="+key, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dial == nil {
		t.Error("expected dial func")
	}
}
