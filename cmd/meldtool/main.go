// Command meldtool melds KHR_materials_variants tags from several glTF/GLB
// assets that share the same geometry into a single output asset.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gltfvariantmeld "github.com/facebookincubator/glTFVariantMeld"
)

var (
	basePath   string
	meldPaths  []string
	taggedAs   []string
	outputPath string
	force      bool
	verbose    bool
	quiet      bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meldtool",
		Short: "Meld material variants from several glTF assets into one",
		RunE:  runMeld,
	}

	flags := cmd.Flags()
	flags.StringVarP(&basePath, "base", "b", "", "base asset to meld into (required)")
	flags.StringArrayVarP(&meldPaths, "meld", "m", nil, "additional asset to meld in; repeatable, pairs positionally with --tagged-as")
	flags.StringArrayVarP(&taggedAs, "tagged-as", "t", nil, "tag the corresponding --meld asset's materials under; repeatable")
	flags.StringVarP(&outputPath, "output", "o", "", "output GLB path (required)")
	flags.BoolVarP(&force, "force", "f", false, "overwrite an existing output file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "print a summary of the melded asset")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress all non-error output")
	cmd.MarkFlagRequired("base")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runMeld(cmd *cobra.Command, args []string) error {
	if len(meldPaths) != len(taggedAs) {
		return fmt.Errorf("--meld and --tagged-as must be given the same number of times (%d vs %d)", len(meldPaths), len(taggedAs))
	}
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("%s already exists; pass --force to overwrite", outputPath)
		}
	}

	asset, err := gltfvariantmeld.FromFile(basePath, "")
	if err != nil {
		return fmt.Errorf("loading base asset %s: %w", basePath, err)
	}

	for i, meldPath := range meldPaths {
		tag := taggedAs[i]
		other, err := gltfvariantmeld.FromFile(meldPath, tag)
		if err != nil {
			return fmt.Errorf("loading %s tagged %q: %w", meldPath, tag, err)
		}
		asset, err = asset.Meld(other)
		if err != nil {
			return fmt.Errorf("melding %s tagged %q into %s: %w", meldPath, tag, basePath, err)
		}
		if verbose && !quiet {
			cmd.Printf("melded %s as tag %q\n", meldPath, tag)
		}
	}

	data, err := asset.GLB()
	if err != nil {
		return fmt.Errorf("serializing melded asset: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	if !quiet {
		meta, err := asset.Metadata()
		if err != nil {
			return fmt.Errorf("computing metadata: %w", err)
		}
		cmd.Printf("wrote %s (%d bytes of textures, %d variational)\n", outputPath, meta.TotalTextureBytes, meta.VariationalTextureBytes)
	}

	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "meldtool:", err)
		os.Exit(1)
	}
}
