package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/arturoeanton/gxml/gxml"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <path> [file]",
		Short: "Print the text content of every element matching a slash-separated path",
		Long: "Path segments are matched against the live element-name stack, e.g.\n" +
			"\"catalog/book/title\" prints the text of every <title> nested directly\n" +
			"under <book> under <catalog>. Matching happens incrementally against\n" +
			"a stack of open element names built from the parser's events,\n" +
			"without ever materializing the document as a tree.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			segments := splitPath(args[0])
			r, closeFn, err := openInput(args[1:])
			if err != nil {
				return err
			}
			defer closeFn()

			var opts []gxml.Option
			if logger != nil {
				opts = append(opts, gxml.WithLogger(logger))
			}
			p := gxml.NewParser(gxml.NewReaderSource(r), opts...)
			return runQuery(cmd.OutOrStdout(), p, segments)
		},
	}
	return cmd
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func runQuery(w io.Writer, p *gxml.Parser, segments []string) error {
	var stack []string
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
			stack = append(stack, string(ev.Name))
			if matches(stack, segments) {
				text, err := collectText(p)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, text)
				stack = stack[:len(stack)-1]
				continue
			}
		case gxml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
}

func matches(stack, segments []string) bool {
	if len(stack) != len(segments) {
		return false
	}
	for i, seg := range segments {
		if stack[i] != seg {
			return false
		}
	}
	return true
}

// collectText consumes the remainder of the element whose start_element
// was already read, concatenating text content and ignoring any nested
// markup, returning once its end_element is seen.
func collectText(p *gxml.Parser) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		ev, err := p.Next()
		if err != nil {
			return "", err
		}
		switch ev.Kind {
		case gxml.StartElement:
			depth++
		case gxml.EndElement:
			depth--
		case gxml.Text, gxml.CData, gxml.Whitespace:
			sb.Write(ev.Data)
		}
	}
	return sb.String(), nil
}
