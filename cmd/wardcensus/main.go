// Command wardcensus takes a census of a seeded ward, prints it, stores
// it in the configured archive, and optionally publishes it to the
// configured blob store.
//
// Configuration is read from the environment:
//
//	WARDCORE_ARCHIVE_DRIVER: memory|sqlite|postgres (default sqlite)
//	WARDCORE_ARCHIVE_SQLITE_PATH / WARDCORE_ARCHIVE_POSTGRES_DSN
//	WARDCORE_CENSUS_PUBLISH: set to also publish via the blob store
//	WARDCORE_BLOB_DRIVER: fs|s3|memory (default fs)
package main

import (
	"context"
	"fmt"
	"os"

	"wardcore/internal/blob"
	"wardcore/internal/census"
	"wardcore/internal/census/archive"
	"wardcore/internal/ward"
	"wardcore/pkg/domain"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "wardcensus: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	svc, err := ward.NewInMemoryService(domain.DefaultLayout())
	if err != nil {
		return err
	}
	if err := ward.SeedDemo(ctx, svc); err != nil {
		return err
	}

	report := census.Build(svc.Store().NowFunc()(), svc.Layout(), svc.Beds(ctx))
	fmt.Print(report.Render())

	arch, err := archive.Open(ctx)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = arch.Close() }()

	id, err := arch.Save(ctx, report)
	if err != nil {
		return fmt.Errorf("archive report: %w", err)
	}
	fmt.Printf("Archived census report %d\n", id)

	if _, ok := os.LookupEnv("WARDCORE_CENSUS_PUBLISH"); !ok {
		return nil
	}
	store, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	keys, err := census.NewPublisher(store, "").Publish(ctx, report)
	if err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	for _, key := range keys {
		fmt.Printf("Published %s\n", key)
	}
	return nil
}
