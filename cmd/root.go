package cmd

import (
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kiesman99/tilesplit/internal/slicer"
	"github.com/kiesman99/tilesplit/pkg/tile"
)

// Version is reported by --version and the health endpoint
var Version = "1.0.0"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tilesplit [input] [output-dir]",
	Short: "Split a tilemap image into named tiles",
	Long: `tilesplit cuts a tilemap into a grid of equally sized tiles and writes
each one as <prefix><name>.png into the output directory.

The default grid is 4x4 with a built-in table of ground texture names
(brick_wall, cracked_stone, ... dark_concrete). Tile sizes use integer
division: pixels that do not fill a whole tile on the right or bottom edge
are dropped unless --strict is given.

Examples:
  # Split a 1024x1024 tilemap into sixteen 256x256 ground textures
  tilesplit -i tilemap.png -o public/assets/textures/ground

  # Same, using positional arguments and writing a tiles.yaml manifest
  tilesplit tilemap.png public/assets/textures/ground --manifest

  # Custom 2x3 grid with custom names
  tilesplit -i walls.png -o out --names "top_l,top_m,top_r;bot_l,bot_m,bot_r"

  # Reassemble the tiles into a single image
  tilesplit join -d public/assets/textures/ground -o rebuilt.png

  # Start HTTP server
  tilesplit serve --port 8080`,
	Args:          cobra.MaximumNArgs(2),
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && viper.GetString("input") == "" {
			return cmd.Help()
		}
		return runSplit(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tilesplit.yaml)")

	rootCmd.Flags().StringP("input", "i", "", "tilemap image to split (PNG, JPEG or GIF)")
	rootCmd.Flags().StringP("output-dir", "o", ".", "directory the tiles are written to (created if missing)")

	// Grid options
	rootCmd.Flags().Int("rows", 0, "grid rows (default: rows of the name table)")
	rootCmd.Flags().Int("cols", 0, "grid columns (default: columns of the name table)")
	rootCmd.Flags().String("names", "", "tile names as 'a,b;c,d' (rows separated by ';')")
	rootCmd.Flags().String("prefix", tile.DefaultPrefix, "prefix of every tile file name")
	rootCmd.Flags().Bool("strict", false, "reject images whose size is not a multiple of the grid")
	rootCmd.Flags().BoolP("manifest", "m", false, "write a tiles.yaml manifest next to the tiles")
	rootCmd.Flags().String("compression", "default", "PNG compression: default, none, speed or best")

	viper.BindPFlag("input", rootCmd.Flags().Lookup("input"))
	viper.BindPFlag("output-dir", rootCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("rows", rootCmd.Flags().Lookup("rows"))
	viper.BindPFlag("cols", rootCmd.Flags().Lookup("cols"))
	viper.BindPFlag("names", rootCmd.Flags().Lookup("names"))
	viper.BindPFlag("prefix", rootCmd.Flags().Lookup("prefix"))
	viper.BindPFlag("strict", rootCmd.Flags().Lookup("strict"))
	viper.BindPFlag("manifest", rootCmd.Flags().Lookup("manifest"))
	viper.BindPFlag("compression", rootCmd.Flags().Lookup("compression"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".tilesplit" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tilesplit")
	}

	viper.SetEnvPrefix("tilesplit")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configNames reads the name table from the "names" key. Flags and
// environment variables give it as a string; config files may also give
// a YAML list of rows.
func configNames() (tile.NameTable, error) {
	switch v := viper.Get("names").(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return tile.ParseNames(v)
	default:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid names in config: %w", err)
		}

		var names tile.NameTable
		if err := yaml.Unmarshal(data, &names); err != nil {
			return nil, fmt.Errorf("names must be a list of rows of strings: %w", err)
		}
		return names, nil
	}
}

// parseCompression maps the "compression" key to a PNG compression level
func parseCompression(s string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "speed":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	}
	return 0, fmt.Errorf("unknown compression %q (want default, none, speed or best)", s)
}

func runSplit(cmd *cobra.Command, args []string) error {
	input := viper.GetString("input")
	outputDir := viper.GetString("output-dir")

	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		outputDir = args[1]
	}

	if input == "" {
		return fmt.Errorf("input image is required (use --input)")
	}

	names, err := configNames()
	if err != nil {
		return err
	}

	rows := viper.GetInt("rows")
	cols := viper.GetInt("cols")
	if rows < 0 || cols < 0 {
		return fmt.Errorf("rows and cols must be positive")
	}

	names, err = tile.ResolveNames(names, rows, cols)
	if err != nil {
		return err
	}

	compression, err := parseCompression(viper.GetString("compression"))
	if err != nil {
		return err
	}

	// An empty prefix is honoured; the flag default supplies tile_
	prefix := viper.GetString("prefix")

	opts := &slicer.Options{
		Input:       input,
		OutputDir:   outputDir,
		Names:       names,
		Prefix:      &prefix,
		Strict:      viper.GetBool("strict"),
		Manifest:    viper.GetBool("manifest"),
		Compression: compression,
	}

	_, err = slicer.Run(cmd.Context(), opts, cmd.OutOrStdout())
	return err
}
