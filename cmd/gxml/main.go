// Command gxml is a thin CLI over the gxml package: a pretty-printer,
// an event dumper, and a simple path query, none of which contain any
// parsing logic of their own — everything flows through gxml.Parser.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arturoeanton/gxml/gxml"
)

// logger is resolved once from the root command's persistent flags and
// shared by every subcommand, so --log-level/--log-format apply no
// matter where on the command line they're passed.
var logger *slog.Logger

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	logCfg := &gxml.LogConfig{}

	root := &cobra.Command{
		Use:   "gxml",
		Short: "Streaming, arena-backed XML tools",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logCfg.NewLoggerFromConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}
	logCfg.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newFmtCmd())
	root.AddCommand(newEventsCmd())
	root.AddCommand(newQueryCmd())
	return root
}
