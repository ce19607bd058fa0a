// Package yarn drives the yarn package manager and the node runtime through
// subprocesses.
package yarn

import (
	"context"
	"strings"

	"github.com/v-gjy/redwood/internal/infra/shell"
	"github.com/v-gjy/redwood/internal/ports"
)

const (
	defaultYarnBin = "yarn"
	defaultNodeBin = "node"
)

type commandRunner interface {
	Run(ctx context.Context, cmd shell.Command) (shell.Result, error)
}

// Client implements ports.PackageManager and ports.VersionProbe.
type Client struct {
	runner commandRunner
	bins   map[string]string
}

type Option func(*Client)

// WithBinary overrides the executable used for a tool ("yarn", "node").
func WithBinary(tool, bin string) Option {
	return func(c *Client) {
		if strings.TrimSpace(bin) != "" {
			c.bins[tool] = bin
		}
	}
}

func New(runner commandRunner, opts ...Option) *Client {
	c := &Client{
		runner: runner,
		bins: map[string]string{
			"yarn": defaultYarnBin,
			"node": defaultNodeBin,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ ports.PackageManager = (*Client)(nil)
	_ ports.VersionProbe   = (*Client)(nil)
)

func (c *Client) Install(ctx context.Context, dir string) error {
	return c.Run(ctx, dir, "install")
}

func (c *Client) Run(ctx context.Context, dir string, args ...string) error {
	_, err := c.runner.Run(ctx, shell.Command{
		Name: c.bin("yarn"),
		Args: args,
		Dir:  dir,
	})
	return err
}

// Version runs "<tool> --version" and returns the trimmed first line.
func (c *Client) Version(ctx context.Context, tool string) (string, error) {
	res, err := c.runner.Run(ctx, shell.Command{
		Name: c.bin(tool),
		Args: []string{"--version"},
	})
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(res.Stdout)
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = strings.TrimSpace(out[:i])
	}
	return out, nil
}

func (c *Client) bin(tool string) string {
	if b, ok := c.bins[tool]; ok {
		return b
	}
	return tool
}
