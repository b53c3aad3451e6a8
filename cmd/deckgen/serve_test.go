package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// recordingLauncher captures the URL serve asks to open
type recordingLauncher struct {
	urls chan string
	err  error
}

func (l *recordingLauncher) Launch(url string, noOpen bool) error {
	if !noOpen {
		l.urls <- url
	}
	return l.err
}

func (l *recordingLauncher) Detect() (string, error) {
	return "Recorder", nil
}

func TestValidateServeConfig(t *testing.T) {
	tests := []struct {
		name    string
		server  entities.ServerConfig
		wantErr string
	}{
		{name: "valid", server: entities.ServerConfig{Host: "localhost", Port: 8000}},
		{name: "zero port", server: entities.ServerConfig{Host: "localhost", Port: 0}, wantErr: "invalid port number: 0"},
		{name: "port too large", server: entities.ServerConfig{Host: "localhost", Port: 70000}, wantErr: "invalid port number: 70000"},
		{name: "host with space", server: entities.ServerConfig{Host: "local host", Port: 8000}, wantErr: "invalid host: local host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateServeConfig(&entities.Config{Server: tt.server})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestBrowserURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8000", browserURL("127.0.0.1:8000"))
	assert.Equal(t, "http://localhost:8000", browserURL("0.0.0.0:8000"))
	assert.Equal(t, "http://localhost:8000", browserURL("[::]:8000"))
	assert.Equal(t, "http://example", browserURL("example"))
}

func TestServeFlags(t *testing.T) {
	require.NoError(t, serveCmd.Flags().Set("port", "9100"))
	require.NoError(t, serveCmd.Flags().Set("open", "true"))
	t.Cleanup(func() {
		port = 0
		openBrowser = false
		serveCmd.Flags().Lookup("port").Changed = false
		serveCmd.Flags().Lookup("open").Changed = false
	})

	flags := serveFlags(serveCmd)
	assert.Equal(t, 9100, flags["port"])
	assert.Equal(t, true, flags["open"])
	assert.NotContains(t, flags, "host")
}

func TestServeLifecycle(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Browser.AutoOpen = true

	launcher := &recordingLauncher{urls: make(chan string, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, cfg, launcher, discardLogger(), io.Discard)
	}()

	var url string
	select {
	case url = <-launcher.urls:
	case err := <-done:
		t.Fatalf("serve returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get(url + "/api/health")
	require.NoError(t, err)
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	_ = resp.Body.Close()
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, Version, health["version"])
	assert.Contains(t, health, "details")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
