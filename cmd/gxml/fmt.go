package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arturoeanton/gxml/gxml"
	"github.com/spf13/cobra"
)

func newFmtCmd() *cobra.Command {
	var preserveWhitespace bool
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Pretty-print an XML document by replaying its event stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(args)
			if err != nil {
				return err
			}
			defer closeFn()

			opts := []gxml.Option{gxml.WithPreserveWhitespace(preserveWhitespace)}
			if maxDepth > 0 {
				opts = append(opts, gxml.WithMaxDepth(maxDepth))
			}
			if logger != nil {
				opts = append(opts, gxml.WithLogger(logger))
			}
			p := gxml.NewParser(gxml.NewReaderSource(r), opts...)
			return prettyPrint(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().BoolVar(&preserveWhitespace, "preserve-whitespace", false, "have the parser emit whitespace-only text runs (the pretty-printer trims them, so they do not appear in the output)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "override the element nesting depth bound (0 keeps the library default)")
	return cmd
}

// prettyPrint replays p's event stream as indented XML. It has no
// access to the original formatting, only to the structural events,
// matching the streaming spirit of the underlying parser.
func prettyPrint(w io.Writer, p *gxml.Parser) error {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	depth := 0
	for {
		ev, err := p.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch ev.Kind {
		case gxml.StartElement:
			indent(bw, depth)
			fmt.Fprintf(bw, "<%s", ev.Name)
			for _, a := range ev.Attrs {
				fmt.Fprintf(bw, " %s=%q", a.Name, a.Value)
			}
			fmt.Fprint(bw, ">\n")
			depth++
		case gxml.EndElement:
			depth--
			indent(bw, depth)
			fmt.Fprintf(bw, "</%s>\n", ev.Name)
		case gxml.Text, gxml.Whitespace, gxml.CData:
			text := strings.TrimSpace(string(ev.Data))
			if text == "" {
				continue
			}
			indent(bw, depth)
			fmt.Fprintln(bw, text)
		case gxml.Comment:
			indent(bw, depth)
			fmt.Fprintf(bw, "<!--%s-->\n", ev.Data)
		case gxml.ProcessingInstruction:
			indent(bw, depth)
			fmt.Fprintf(bw, "<?%s %s?>\n", ev.Target, ev.Data)
		}
	}
}

func indent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "  ")
	}
}

func openInput(args []string) (io.Reader, func() error, error) {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
