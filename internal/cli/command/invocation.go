package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/confstore-go/internal/cli/config"
	"github.com/yndnr/confstore-go/internal/cli/output"
	"github.com/yndnr/confstore-go/internal/core/domain"
	"github.com/yndnr/confstore-go/internal/core/service"
	"github.com/yndnr/confstore-go/internal/telemetry/logger"
	"github.com/yndnr/confstore-go/internal/telemetry/metric"
)

const defaultHost = "localhost"

// invocation bundles what a command needs to run one request.
type invocation struct {
	cfg        *config.CLIConfig
	dispatcher *service.Dispatcher
	metrics    *metric.Registry
	formatter  output.Formatter
	raw        bool
	out        io.Writer
}

// newInvocation loads the configuration, resolves the endpoint and wires a
// dispatcher for the running command.
func newInvocation(c *cli.Context) (*invocation, error) {
	cfg, err := config.Load(c.String("config"), flagOverrides(c))
	if err != nil {
		return nil, err
	}

	format, err := cfg.WireFormat()
	if err != nil {
		return nil, err
	}
	outFormat, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithCause(err).WithDetails(err.Error())
	}

	ctx := commandContext(c)
	endpoint, err := resolveEndpoint(ctx, cfg, format)
	if err != nil {
		return nil, err
	}

	inv := service.NewInvocationContext(endpoint, format, cfg.Timeout, cfg.Verbose)
	logger.L(logger.WithRequestID(ctx, inv.RequestID)).Debug("endpoint resolved",
		"endpoint", endpoint.Address,
		"format", format.String(),
		"timeout", cfg.Timeout.String(),
	)

	reg := metric.NewRegistry()
	d, err := service.NewDispatcher(inv, service.WithMetrics(reg))
	if err != nil {
		return nil, err
	}

	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}

	return &invocation{
		cfg:        cfg,
		dispatcher: d,
		metrics:    reg,
		formatter:  output.NewFormatter(outFormat, false),
		raw:        c.Bool("raw"),
		out:        out,
	}, nil
}

// resolveEndpoint applies the endpoint precedence: explicit URL, then the
// prefix joined with the node name of the configured host.
func resolveEndpoint(ctx context.Context, cfg *config.CLIConfig, format domain.Format) (domain.ServiceEndpoint, error) {
	var lookup service.NodeLookup = service.LinkMonitorLookup{Timeout: cfg.Timeout, Format: format}
	if cfg.Node != "" {
		lookup = service.StaticLookup(cfg.Node)
	}

	host := cfg.Host
	if host == "" {
		host = defaultHost
	}

	resolver := service.NewResolver(lookup, cfg.ConfigStoreURLPrefix)
	return resolver.Resolve(ctx, cfg.ConfigStoreURL, host, cfg.Ports.LinkMonitorCmd)
}

// finish writes the metrics textfile when one is configured. It runs after
// the command whether or not the request succeeded.
func (inv *invocation) finish(ctx context.Context) {
	path := inv.cfg.MetricsTextfile
	if path == "" {
		return
	}
	if err := inv.metrics.WriteTextfile(path); err != nil {
		logger.L(ctx).Warn("write metrics textfile failed", "path", path, "error", err)
	}
}

// render writes v with the selected formatter.
func (inv *invocation) render(v any) error {
	if err := inv.formatter.Format(inv.out, v); err != nil {
		return fmt.Errorf("render output: %w", err)
	}
	return nil
}

func commandContext(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}

// run loads an invocation, calls fn and always writes metrics afterwards.
func run(c *cli.Context, fn func(ctx context.Context, inv *invocation) error) error {
	inv, err := newInvocation(c)
	if err != nil {
		return err
	}
	ctx := commandContext(c)
	defer inv.finish(ctx)
	return fn(ctx, inv)
}
