// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package embed

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyHost indicates the embedding host URL is empty.
	ErrEmptyHost = errors.New("embedding host cannot be empty")

	// ErrEmptyModel indicates the embedding model name is empty.
	ErrEmptyModel = errors.New("embedding model cannot be empty")

	// ErrInvalidHost indicates the embedding host is not an HTTP(S) URL.
	ErrInvalidHost = errors.New("embedding host must be an http(s) URL")
)

// Config holds configuration for the embedding service.
type Config struct {
	// Host is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server.
	Host string

	// Model is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	Model string

	// Token is the API token. Local OpenAI-compatible services that don't
	// require authentication accept any non-empty value.
	Token string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// DefaultConfig returns a Config pointed at a local OpenAI-compatible
// endpoint.
func DefaultConfig(opts ...ConfigOption) *Config {
	c := &Config{
		Host:  "http://localhost:11434/v1",
		Model: "embeddinggemma",
		Token: "none",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Host == "" {
		return ErrEmptyHost
	}
	if !strings.HasPrefix(c.Host, "http://") && !strings.HasPrefix(c.Host, "https://") {
		return ErrInvalidHost
	}
	if c.Model == "" {
		return ErrEmptyModel
	}
	return nil
}
