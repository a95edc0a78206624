package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gogpu/glstream/command"
	"github.com/gogpu/glstream/stream"
	"github.com/gogpu/glstream/webgl"
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE...",
	Short: "Per-command counts and byte totals",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStats,
}

// commandStats summarizes one command name.
type commandStats struct {
	Name  string
	Count int
	Words int
	Bytes int
}

// streamStats summarizes one archive.
type streamStats struct {
	Commands []commandStats
	Words    int
	Bytes    int
}

// computeStats decodes wire and totals it per command, ordered by count
// then name.
func computeStats(reg *command.Registry, codec stream.TextCodec, wire stream.WireData) (streamStats, error) {
	p := stream.NewPlayer(reg, stream.WithTextCodec(codec))
	if err := p.AddBuffer(wire); err != nil {
		return streamStats{}, err
	}

	byName := make(map[string]*commandStats)
	var st streamStats
	for i, rec := range p.Commands() {
		cs, ok := byName[rec.Name]
		if !ok {
			cs = &commandStats{Name: rec.Name}
			byName[rec.Name] = cs
		}
		desc, _ := reg.LookupCode(rec.Code)
		words := 1 + desc.HeaderWords()
		cs.Count++
		cs.Words += words
		cs.Bytes += len(wire.Values[i])
		st.Words += words
		st.Bytes += len(wire.Values[i])
	}
	for _, cs := range byName {
		st.Commands = append(st.Commands, *cs)
	}
	sort.Slice(st.Commands, func(i, j int) bool {
		a, b := st.Commands[i], st.Commands[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	return st, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	files, err := loadArchives(cmd.Context(), args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, f := range files {
		st, err := computeStats(webgl.Registry(), settings.text, f.wire)
		if err != nil {
			return fmt.Errorf("%s: %w", f.path, err)
		}
		printStats(out, f.path, st)
	}
	return nil
}

func printStats(w io.Writer, path string, st streamStats) {
	_, _ = headerColor.Fprintf(w, "%s\n", path)
	_, _ = fmt.Fprintf(w, "  %-26s %6s %8s %10s\n", "command", "count", "words", "bytes")
	for _, cs := range st.Commands {
		_, _ = fmt.Fprintf(w, "  %s %6d %8d %10d\n", nameColor.Sprintf("%-26s", cs.Name), cs.Count, cs.Words, cs.Bytes)
	}
	_, _ = fmt.Fprintf(w, "  %-26s %6s %8d %10d\n", "total", "", st.Words, st.Bytes)
}
