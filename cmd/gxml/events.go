package main

import (
	"fmt"
	"io"

	"github.com/arturoeanton/gxml/gxml"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var resolveEntities bool

	cmd := &cobra.Command{
		Use:   "events [file]",
		Short: "Dump the raw event stream produced by the parser, one line per event",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(args)
			if err != nil {
				return err
			}
			defer closeFn()

			opts := []gxml.Option{gxml.WithResolveEntities(resolveEntities)}
			if logger != nil {
				opts = append(opts, gxml.WithLogger(logger))
			}
			p := gxml.NewParser(gxml.NewReaderSource(r), opts...)
			out := cmd.OutOrStdout()
			for {
				ev, err := p.Next()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				printEvent(out, ev)
			}
		},
	}
	cmd.Flags().BoolVar(&resolveEntities, "resolve-entities", true, "resolve entity references in text and attribute values")
	return cmd
}

func printEvent(w io.Writer, ev gxml.Event) {
	switch ev.Kind {
	case gxml.StartElement:
		fmt.Fprintf(w, "StartElement %s attrs=%d\n", ev.Name, len(ev.Attrs))
		for _, a := range ev.Attrs {
			fmt.Fprintf(w, "  @%s=%q\n", a.Name, a.Value)
		}
	case gxml.EndElement:
		fmt.Fprintf(w, "EndElement %s\n", ev.Name)
	case gxml.Text:
		fmt.Fprintf(w, "Text %q\n", ev.Data)
	case gxml.Whitespace:
		fmt.Fprintf(w, "Whitespace %q\n", ev.Data)
	case gxml.CData:
		fmt.Fprintf(w, "CData %q\n", ev.Data)
	case gxml.Comment:
		fmt.Fprintf(w, "Comment %q\n", ev.Data)
	case gxml.ProcessingInstruction:
		fmt.Fprintf(w, "ProcessingInstruction target=%s %q\n", ev.Target, ev.Data)
	case gxml.XMLDeclaration:
		fmt.Fprintf(w, "XMLDeclaration version=%s encoding=%s\n", ev.Version, ev.Encoding)
	case gxml.Doctype:
		fmt.Fprintf(w, "Doctype root=%s system=%s public=%s\n", ev.RootName, ev.SystemID, ev.PublicID)
	default:
		fmt.Fprintln(w, ev.Kind)
	}
}
