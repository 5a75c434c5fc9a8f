package client

import (
	"context"
	"net/http"
	"testing"
)

func TestNew_AutoEnableDebugViaEnv(t *testing.T) {
	for _, env := range []string{"HEM_DEBUG", "DEBUG"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, "true")
			c := New("http://example.com")
			ua := c.http.Transport.(*userAgentTransport)
			if _, ok := ua.base.(*debugTransport); !ok {
				t.Fatalf("expected debugTransport to be installed when %s=true", env)
			}
		})
	}
}

func TestNew_NoDebugWithoutEnv(t *testing.T) {
	t.Setenv("HEM_DEBUG", "")
	t.Setenv("DEBUG", "")
	c := New("http://example.com")
	ua := c.http.Transport.(*userAgentTransport)
	if _, ok := ua.base.(*debugTransport); ok {
		t.Fatalf("debugTransport installed without request")
	}
}

func TestDebugTransport_ErrorPath(t *testing.T) {
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, context.DeadlineExceeded
	})
	c := New("http://example.com", WithTransport(rt), WithDebugLogging(true))
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://example.com", http.NoBody)
	if _, err := c.http.Do(req); err == nil {
		t.Fatalf("expected error from underlying transport")
	}
}
