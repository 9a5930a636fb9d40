package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-patterns/pkg/gallery"
	"github.com/ilkoid/poncho-patterns/pkg/grouping"
	"github.com/ilkoid/poncho-patterns/pkg/session"
)

var (
	gallerySrc  sourceFlags
	galleryCfg  configFlags
	galleryOut  string
	gallerySize int
)

func init() {
	rootCmd.AddCommand(galleryCmd)
	gallerySrc.register(galleryCmd)
	galleryCfg.register(galleryCmd)
	galleryCmd.Flags().StringVarP(&galleryOut, "out", "o", "", "output directory (overrides gallery.out_dir)")
	galleryCmd.Flags().IntVar(&gallerySize, "size", 0, "thumbnail side in pixels (overrides gallery.thumb_size)")
}

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Render per-group thumbnails for a configuration",
	Long: `Group the sample files with a configuration and write one thumbnail per
role and group plus manifest.json, so grouping can be reviewed visually.

Downloads are rate limited by gallery.rate_limit (per second) and gallery.burst.

Examples:
  patterns gallery --dir ./photos --preset daily -o ./review
  patterns gallery --s3 --prefix 2025/01/ --file config.json`,
	RunE: runGallery,
}

func runGallery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := galleryCfg.load()
	if err != nil {
		return err
	}
	src, names, keys, err := gallerySrc.load(ctx)
	if err != nil {
		return err
	}

	res := grouping.GroupAndAssignRoles(names, c.GroupPattern, session.PreviewRules(c), nil)
	if err := res.RuleError(); err != nil {
		return err
	}

	opts := gallery.OptionsFromConfig(cfg().Gallery)
	if galleryOut != "" {
		opts.OutDir = galleryOut
	}
	if gallerySize > 0 {
		opts.ThumbSize = gallerySize
	}

	m, err := gallery.Build(ctx, res, keys, src, opts)
	if err != nil {
		return err
	}
	printf(cmd, "Wrote %d groups to %s (%d failed, %d unmatched)\n",
		len(m.Groups), filepath.Join(opts.OutDir, gallery.ManifestFile), m.Failed, len(m.Unmatched))
	if m.Failed > 0 {
		return fmt.Errorf("%d thumbnails failed", m.Failed)
	}
	return nil
}
