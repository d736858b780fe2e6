package main

import (
	"github.com/spf13/cobra"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/render"
)

var (
	renderMock bool
	renderOut  string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the cached snapshots to an HTML report",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderMock, "mock", false, "render the mock cache instead of the real one")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "output path (default from config)")
}

func runRender(cmd *cobra.Command, args []string) error {
	path := cfg.Cache.File
	if renderMock {
		path = cfg.Cache.MockFile
	}
	out := cfg.Render.Output
	if renderOut != "" {
		out = renderOut
	}
	return render.NewRenderer(log).RenderFile(out, cache.NewStore(path, log).Load())
}
