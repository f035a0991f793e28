package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/couchcryptid/beach-hazard-etl/internal/adapter/sqlite"
)

type archiveCmd struct {
	Path string `required:"" type:"existingfile" env:"ARCHIVE_PATH" help:"SQLite payload archive."`

	Stats archiveStatsCmd `cmd:"" help:"Show archived payload counts per source."`
	Show  archiveShowCmd  `cmd:"" help:"Print one archived payload."`
	Prune archivePruneCmd `cmd:"" help:"Delete payloads older than a duration."`
}

func (a *archiveCmd) open(ctx context.Context) (*sqlite.Archive, error) {
	return sqlite.Open(ctx, a.Path)
}

type archiveStatsCmd struct{}

func (archiveStatsCmd) Run(a *archiveCmd, e *env) error {
	ctx := context.Background()
	archive, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer archive.Close()

	stats, err := archive.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "total: %d\n", stats.TotalCount)
	for _, source := range slices.Sorted(maps.Keys(stats.CountBySource)) {
		fmt.Fprintf(e.out, "  %s: %d\n", source, stats.CountBySource[source])
	}
	if !stats.Newest.IsZero() {
		fmt.Fprintf(e.out, "newest: %s\n", stats.Newest.Format(time.RFC3339))
	}
	return nil
}

type archiveShowCmd struct {
	ID int64 `arg:"" help:"Payload id."`
}

func (s *archiveShowCmd) Run(a *archiveCmd, e *env) error {
	ctx := context.Background()
	archive, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer archive.Close()

	body, err := archive.Get(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("payload %d: %w", s.ID, err)
	}
	_, err = e.out.Write(body)
	return err
}

type archivePruneCmd struct {
	OlderThan time.Duration `default:"720h" help:"Age beyond which payloads are deleted."`
}

func (p *archivePruneCmd) Run(a *archiveCmd, e *env) error {
	if p.OlderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}
	ctx := context.Background()
	archive, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer archive.Close()

	removed, err := archive.Prune(ctx, time.Now().Add(-p.OlderThan))
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "pruned %d payloads\n", removed)
	return nil
}
