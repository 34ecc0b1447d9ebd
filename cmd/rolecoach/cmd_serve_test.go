package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveHost(t *testing.T) {
	logger := slog.Default()

	tests := []struct {
		name        string
		host        string
		allowRemote bool
		want        string
	}{
		{"empty defaults to loopback", "", false, "127.0.0.1"},
		{"loopback kept", "127.0.0.1", false, "127.0.0.1"},
		{"localhost kept", "localhost", false, "localhost"},
		{"ipv6 loopback kept", "::1", false, "::1"},
		{"all interfaces forced to loopback", "0.0.0.0", false, "127.0.0.1"},
		{"remote forced to loopback", "10.0.0.5", false, "127.0.0.1"},
		{"remote allowed", "0.0.0.0", true, "0.0.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveHost(tt.host, tt.allowRemote, logger))
		})
	}
}
