package cmd

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/tilesplit/internal/manifest"
	"github.com/kiesman99/tilesplit/internal/stitch"
	"github.com/kiesman99/tilesplit/pkg/tile"
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Reassemble split tiles into a single tilemap",
	Long: `Reassemble a directory of tiles written by tilesplit into one image.

If the directory contains a tiles.yaml manifest it is used to find the
tiles; otherwise the name table from --names (or the built-in table) and
--prefix are used.

Examples:
  tilesplit join -d public/assets/textures/ground -o rebuilt.png
  tilesplit join -d out --names "a,b;c,d" --prefix "" -o rebuilt.jpg`,
	Args: cobra.NoArgs,
	RunE: runJoin,
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().StringP("dir", "d", ".", "directory containing the tiles")
	joinCmd.Flags().StringP("output", "o", "tilemap.png", "output image (.png or .jpg)")
	joinCmd.Flags().String("names", "", "tile names as 'a,b;c,d' when no manifest is present")
	joinCmd.Flags().String("prefix", tile.DefaultPrefix, "prefix of every tile file name")

	viper.BindPFlag("join.dir", joinCmd.Flags().Lookup("dir"))
	viper.BindPFlag("join.output", joinCmd.Flags().Lookup("output"))
	viper.BindPFlag("join.names", joinCmd.Flags().Lookup("names"))
	viper.BindPFlag("join.prefix", joinCmd.Flags().Lookup("prefix"))
}

func runJoin(cmd *cobra.Command, args []string) error {
	dir := viper.GetString("join.dir")
	output := viper.GetString("join.output")

	st := stitch.NewStitcher(cmd.ErrOrStderr())

	var (
		img image.Image
		err error
	)

	if _, statErr := os.Stat(filepath.Join(dir, manifest.FileName)); statErr == nil {
		img, err = st.JoinManifest(dir)
	} else {
		var names tile.NameTable
		if s := viper.GetString("join.names"); s != "" {
			names, err = tile.ParseNames(s)
			if err != nil {
				return err
			}
		}
		names, err = tile.ResolveNames(names, 0, 0)
		if err != nil {
			return err
		}
		img, err = st.Join(dir, names, viper.GetString("join.prefix"))
	}
	if err != nil {
		return err
	}

	if err := stitch.Save(output, img); err != nil {
		return err
	}

	b := img.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s (%dx%d)\n", output, b.Dx(), b.Dy())
	return nil
}
