// Command tilemap inspects map styles and tile archives and runs the
// tessellation pipeline from the command line.
package main

import (
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/tilemap"
	"github.com/gogpu/tilemap/style"
	"github.com/gogpu/tilemap/text"
	"github.com/gogpu/tilemap/tile"
	"github.com/gogpu/tilemap/tilesource"
)

var (
	verbose bool
	dataDir string
)

func main() {
	root := &cobra.Command{
		Use:          "tilemap",
		Short:        "Inspect map styles and tessellate vector tiles",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				}))
				slog.SetDefault(logger)
				tilemap.SetLogger(logger)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", ".",
		"directory relative tile archive paths resolve against")

	root.AddCommand(inspectCmd(), probeCmd(), tessellateCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseTileID(s string) (tile.ID, error) {
	var z, x, y uint32
	if _, err := fmt.Sscanf(s, "%d/%d/%d", &z, &x, &y); err != nil {
		return tile.ID{}, fmt.Errorf("tile id %q: want z/x/y", s)
	}
	id := tile.ID{Zoom: uint16(z), Column: x, Row: y}
	if !id.Valid() {
		return tile.ID{}, fmt.Errorf("tile id %q: out of range at zoom %d", s, z)
	}
	return id, nil
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <style.json>",
		Short: "Summarize a style document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := style.Load(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s (version %d)\n", st.Name, st.Version)

			fmt.Printf("\nsources:\n")
			for _, name := range st.Sources.Names() {
				source, _ := st.Sources.Get(name)
				fmt.Printf("  %-16s %d tile url(s)\n", name, len(source.Tiles))
			}

			fmt.Printf("\nlayers:\n")
			for i := range st.Layers {
				layer := &st.Layers[i]
				target := ""
				if layer.Source != "" {
					target = fmt.Sprintf(" <- %s/%s", layer.Source, layer.SourceLayer)
				}
				fmt.Printf("  %-24s %s%s\n", layer.ID, layer.Kind, target)
			}
			return nil
		},
	}
}

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <archive-url> <z/x/y>",
		Short: "Query one tile out of an archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTileID(args[1])
			if err != nil {
				return err
			}

			src, err := tilesource.Open(args[0], dataDir)
			if err != nil {
				return err
			}
			defer src.Close()

			decoded, err := src.QueryTile(id)
			if err != nil {
				return err
			}
			if decoded == nil {
				fmt.Printf("%s: no data\n", id)
				return nil
			}

			for i := range decoded.Layers {
				layer := &decoded.Layers[i]
				fmt.Printf("%-24s %5d features, extent %d, %d keys\n",
					layer.Name, len(layer.Features), layer.Extent, len(layer.Keys))
			}
			return nil
		},
	}
}

func tessellateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tessellate <style.json> <z/x/y>",
		Short: "Run the full pipeline for one tile and report buffer sizes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTileID(args[1])
			if err != nil {
				return err
			}

			st, err := style.Load(args[0])
			if err != nil {
				return err
			}
			fonts, err := text.NewCollection()
			if err != nil {
				return err
			}

			sources := tilesource.OpenCollection(dataDir, &st.Sources, tilemap.Logger())
			defer sources.Close()

			geometry := tilemap.NewTessellator(st, sources, fonts, nil).Tessellate(id)

			atlas := text.NewAtlas(fonts, 0, nil)
			tilemap.PrepareGlyphs(atlas, geometry.Labels)
			atlas.Upload(func(image.Point, *image.Alpha) {})
			textBuf, complete := tilemap.BuildTextGeometry(atlas, geometry.Labels)

			fmt.Printf("tile %s\n", id)
			fmt.Printf("  %8d geometry vertices\n", len(geometry.Vertices))
			fmt.Printf("  %8d geometry indices\n", len(geometry.Indices))
			fmt.Printf("  %8d feature draws\n", len(geometry.Features))
			fmt.Printf("  %8d text vertices\n", len(textBuf.Vertices))
			fmt.Printf("  %8d text indices\n", len(textBuf.Indices))
			labels := 0
			for _, layer := range textBuf.Layers {
				labels += len(layer.Labels)
			}
			fmt.Printf("  %8d labels\n", labels)
			if !complete {
				fmt.Println("  glyph atlas incomplete after one upload")
			}
			return nil
		},
	}
}
