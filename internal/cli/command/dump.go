package command

import (
	"context"
	"encoding/base64"
	"encoding/hex"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/confstore-go/internal/cli/output"
	"github.com/yndnr/confstore-go/internal/core/domain"
	"github.com/yndnr/confstore-go/internal/protocol"
)

// PrefixAllocatorCommand dumps the prefix allocator config.
func PrefixAllocatorCommand() *cli.Command {
	return dumpCommand("prefix-allocator", "Dump prefix allocator config",
		func(ctx context.Context, inv *invocation) (*domain.ConfigDump, error) {
			return inv.dispatcher.DumpPrefixAllocator(ctx)
		})
}

// LinkMonitorCommand dumps the link monitor config.
func LinkMonitorCommand() *cli.Command {
	return dumpCommand("link-monitor", "Dump link monitor config",
		func(ctx context.Context, inv *invocation) (*domain.ConfigDump, error) {
			return inv.dispatcher.DumpLinkMonitor(ctx)
		})
}

// PrefixManagerCommand dumps the prefix manager config.
func PrefixManagerCommand() *cli.Command {
	return dumpCommand("prefix-manager", "Dump prefix manager config",
		func(ctx context.Context, inv *invocation) (*domain.ConfigDump, error) {
			return inv.dispatcher.DumpPrefixManager(ctx)
		})
}

type dumpFunc func(ctx context.Context, inv *invocation) (*domain.ConfigDump, error)

func dumpCommand(name, usage string, fn dumpFunc) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				return domain.ErrInvalidArgument.WithDetails(name + " takes no arguments")
			}
			return run(c, func(ctx context.Context, inv *invocation) error {
				dump, err := fn(ctx, inv)
				if err != nil {
					return err
				}
				if inv.raw {
					return output.WriteRaw(inv.out, dump.Blob)
				}
				return inv.render(newDumpView(dump, inv))
			})
		},
	}
}

// byteSize renders as a human readable size in tables and as a number in
// json and yaml.
type byteSize int

func (b byteSize) String() string {
	return output.FormatBytes(int64(b))
}

// RequestDetails are the verbose-only fields of a rendered result.
type RequestDetails struct {
	RequestID string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Format    string `json:"format,omitempty" yaml:"format,omitempty"`
}

func (inv *invocation) details() RequestDetails {
	ic := inv.dispatcher.Invocation()
	if !ic.Verbose {
		return RequestDetails{}
	}
	return RequestDetails{
		RequestID: ic.RequestID,
		Endpoint:  ic.Endpoint.Address,
		Format:    ic.Format.String(),
	}
}

// dumpView is the rendered form of a ConfigDump.
type dumpView struct {
	Key      string   `json:"key" yaml:"key"`
	Schema   string   `json:"schema" yaml:"schema"`
	Size     byteSize `json:"size" yaml:"size"`
	Checksum string   `json:"checksum" yaml:"checksum"`
	Blob     string   `json:"blob,omitempty" yaml:"blob,omitempty" table:"-"`

	RequestDetails `yaml:",inline"`
}

func newDumpView(dump *domain.ConfigDump, inv *invocation) dumpView {
	return dumpView{
		Key:            dump.Key,
		Schema:         dump.Schema,
		Size:           byteSize(len(dump.Blob)),
		Checksum:       hex.EncodeToString(protocol.Checksum(dump.Blob)),
		Blob:           base64.StdEncoding.EncodeToString(dump.Blob),
		RequestDetails: inv.details(),
	}
}
