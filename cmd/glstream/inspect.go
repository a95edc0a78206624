package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gogpu/glstream/stream"
	"github.com/gogpu/glstream/target/trace"
	"github.com/gogpu/glstream/webgl"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	nameColor   = color.New(color.FgGreen)
	refColor    = color.New(color.FgYellow)
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Decode and print every command of archived streams",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	files, err := loadArchives(cmd.Context(), args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, f := range files {
		p := stream.NewPlayer(webgl.Registry(), stream.WithTextCodec(settings.text))
		if err := p.AddBuffer(f.wire); err != nil {
			return fmt.Errorf("%s: %w", f.path, err)
		}
		printRecords(out, f.path, f.wire.RefPrefix, p.Commands())
	}
	return nil
}

func printRecords(w io.Writer, path, prefix string, recs []stream.Record) {
	header := path
	if prefix != "" {
		header += " [" + prefix + "]"
	}
	_, _ = headerColor.Fprintf(w, "%s: %d commands\n", header, len(recs))
	for i, rec := range recs {
		_, _ = fmt.Fprintf(w, "%5d  %s\n", i, formatRecord(rec))
	}
}

// formatRecord renders a decoded record. Handle ids print as @id.
func formatRecord(rec stream.Record) string {
	var sb strings.Builder
	sb.WriteString(nameColor.Sprint(rec.Name))
	sb.WriteByte('(')
	for i, v := range rec.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		if rec.Args[i].IsHandle() {
			sb.WriteString(refColor.Sprint(formatID(v.(uint32))))
			continue
		}
		sb.WriteString(trace.Format(v))
	}
	sb.WriteByte(')')
	if len(rec.Ref) > 0 {
		ids := make([]string, len(rec.Ref))
		for i, id := range rec.Ref {
			ids[i] = formatID(id)
		}
		sb.WriteString(" -> ")
		sb.WriteString(refColor.Sprint(strings.Join(ids, " ")))
	}
	return sb.String()
}

func formatID(id uint32) string {
	if id == 0 {
		return "null"
	}
	return fmt.Sprintf("@%d", id)
}
