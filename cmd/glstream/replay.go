package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gogpu/glstream"
	"github.com/gogpu/glstream/stream"
	"github.com/gogpu/glstream/target"
	_ "github.com/gogpu/glstream/target/trace"
	"github.com/gogpu/glstream/webgl"
)

var replayCmd = &cobra.Command{
	Use:   "replay FILE...",
	Short: "Replay archived streams, in order, into one target",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().String("target", "trace", "playback target")
}

func runReplay(cmd *cobra.Command, args []string) error {
	tgt, err := target.New(settings.cfg.Target)
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, target.Names())
	}
	files, err := loadArchives(cmd.Context(), args)
	if err != nil {
		return err
	}

	p := stream.NewPlayer(webgl.Registry(), stream.WithTextCodec(settings.text))
	for _, f := range files {
		if err := p.AddBuffer(f.wire); err != nil {
			return fmt.Errorf("%s: %w", f.path, err)
		}
	}

	total := p.Pending()
	if err := p.Playback(tgt, target.Logging(glstream.Logger())); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if wt, ok := tgt.(io.WriterTo); ok {
		if _, err := wt.WriteTo(out); err != nil {
			return err
		}
	}
	_, _ = headerColor.Fprintf(out, "replayed %d commands from %d files into %q\n",
		total, len(files), settings.cfg.Target)
	return nil
}
