package main

import (
	"github.com/spf13/cobra"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/mockdata"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Generate an aged mock history from the real cache",
	Long:  `Writes a mock cache where every symbol has its latest snapshot plus a synthetic one for the previous day, so the report's change signals can be previewed with "render --mock".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := mockdata.NewGenerator(
			cache.NewStore(cfg.Cache.File, log),
			cache.NewStore(cfg.Cache.MockFile, log),
			log,
		)
		_, err := g.Generate()
		return err
	},
}
