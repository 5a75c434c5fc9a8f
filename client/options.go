package client

// Functional options that configure the Client during construction.

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Option configures a Client during construction in New.
//
// Transport options are collected first and the final chain is assembled once
// all options ran, so their order does not matter.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net for a single HTTP request. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging logs each request/response when enabled is true.
// Do not enable this in production; dumps include headers and bodies.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.debug = true
		}
		return nil
	}
}

// WithAdminKey sets the credential sent as X-Admin-Key on action writes.
func WithAdminKey(key string) Option {
	return func(c *Client) error {
		c.adminKey = strings.TrimSpace(key)
		return nil
	}
}

// WithTransport replaces the base RoundTripper (http.DefaultTransport otherwise).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		if rt == nil {
			return fmt.Errorf("transport cannot be nil")
		}
		c.transport = rt
		return nil
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		if strings.TrimSpace(ua) == "" {
			return fmt.Errorf("user agent cannot be empty")
		}
		c.userAgent = ua
		return nil
	}
}
