package di

import (
	"bytes"
	"testing"

	"github.com/kbukum/microdi/logger"
)

// Client mirrors an external API client with two implementations.
type Client interface {
	Request(url string) map[string]int
	IsFancy() bool
}

type FancyClient struct {
	apiKey string
}

func NewFancyClient(apiKey string) *FancyClient {
	return &FancyClient{apiKey: apiKey}
}

func (c *FancyClient) Request(url string) map[string]int {
	return map[string]int{"api_key_length": len(c.apiKey), "url_length": len(url)}
}

func (c *FancyClient) IsFancy() bool { return true }

type PlainClient struct{}

func (PlainClient) Request(string) map[string]int { return map[string]int{} }
func (PlainClient) IsFancy() bool                 { return false }

type Counter struct {
	val int
}

func NewCounter() *Counter { return &Counter{} }

func (c *Counter) Add() int {
	c.val++
	return c.val
}

func (c *Counter) Get() int { return c.val }

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	return NewRegistry(append([]Option{WithLogger(logger.Nop())}, opts...)...)
}

// newLoggedRegistry returns a registry whose JSON logs are captured in buf.
func newLoggedRegistry(t *testing.T, buf *bytes.Buffer) *Registry {
	t.Helper()
	l := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "di-test", buf)
	return NewRegistry(WithLogger(l))
}
