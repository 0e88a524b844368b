package app

import (
	"fmt"

	"github.com/guttosm/spimexpulse/config"
	"github.com/guttosm/spimexpulse/internal/discovery"
	"github.com/guttosm/spimexpulse/internal/fetcher"
	"github.com/guttosm/spimexpulse/internal/ingestion"
	"github.com/guttosm/spimexpulse/internal/report"
	"github.com/guttosm/spimexpulse/internal/storage"
)

// NewPipeline assembles the ingestion pipeline from cfg.Ingestion: one HTTP
// fetcher shared by discovery and downloads, the default bulletin layout and
// a consumer writing through repo.
func NewPipeline(cfg config.Config, repo storage.TradeResultsRepository) (*ingestion.Pipeline, error) {
	ic := cfg.Ingestion
	f := fetcher.New(ic.HTTPTimeout, ic.UserAgent)

	links, err := discovery.New(f, discovery.Options{
		ListingURL:  ic.ListingURL,
		Selector:    ic.LinkSelector,
		TitleMarker: ic.TitleMarker,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize discovery: %w", err)
	}

	d := ingestion.NewDownloader(f, report.NewDefaultParser(), ic.ReportsDir)
	c := ingestion.NewConsumer(repo)
	return ingestion.NewPipeline(links, d, c, ic.Concurrency), nil
}
