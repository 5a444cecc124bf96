package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/confstore-go/internal/core/domain"
)

// stdinPath selects standard input as the value source of store.
const stdinPath = "-"

// EraseCommand removes a key from the Config Store.
func EraseCommand() *cli.Command {
	return &cli.Command{
		Name:      "erase",
		Usage:     "Erase a key from the Config Store",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return domain.ErrInvalidArgument.WithDetails("usage: erase KEY")
			}
			key := c.Args().First()

			return run(c, func(ctx context.Context, inv *invocation) error {
				ack, err := inv.dispatcher.Erase(ctx, key)
				if err != nil {
					return err
				}
				return inv.render(newAckView(ack, "erased", 0, inv))
			})
		},
	}
}

// StoreCommand writes the content of FILE (or stdin for "-") under KEY.
func StoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "store",
		Usage:     "Store the content of a file under a key",
		ArgsUsage: "KEY FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return domain.ErrInvalidArgument.WithDetails("usage: store KEY FILE")
			}
			key, path := c.Args().Get(0), c.Args().Get(1)

			value, err := readValue(c, path)
			if err != nil {
				return err
			}

			return run(c, func(ctx context.Context, inv *invocation) error {
				ack, err := inv.dispatcher.Store(ctx, key, value)
				if err != nil {
					return err
				}
				return inv.render(newAckView(ack, "stored", len(value), inv))
			})
		},
	}
}

func readValue(c *cli.Context, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinPath {
		var in io.Reader = os.Stdin
		if c.App.Reader != nil {
			in = c.App.Reader
		}
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithCause(err).WithDetails(fmt.Sprintf("read value: %v", err))
	}
	return data, nil
}

// ackView is the rendered form of an Ack.
type ackView struct {
	Key    string   `json:"key" yaml:"key"`
	Result string   `json:"result" yaml:"result"`
	Size   byteSize `json:"size,omitempty" yaml:"size,omitempty"`

	RequestDetails `yaml:",inline"`
}

func newAckView(ack *domain.Ack, result string, size int, inv *invocation) ackView {
	return ackView{
		Key:            ack.Key,
		Result:         result,
		Size:           byteSize(size),
		RequestDetails: inv.details(),
	}
}
