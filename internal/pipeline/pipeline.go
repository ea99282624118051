// Package pipeline orchestrates the ingest workflow: archive resolution,
// line parsing and batched database writes, per log type.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hlgr360/logfile-mcp-server/internal/archive"
	"github.com/hlgr360/logfile-mcp-server/internal/config"
	"github.com/hlgr360/logfile-mcp-server/internal/database"
	"github.com/hlgr360/logfile-mcp-server/internal/models"
	"github.com/hlgr360/logfile-mcp-server/internal/parser"
)

// maxLineBytes bounds a single log line; anything longer is a corrupt or
// hostile input and fails the file, not the process
const maxLineBytes = 1 << 20

// TypeStats aggregates ingest metrics for one log type
type TypeStats struct {
	FilesProcessed int64         `json:"files_processed"`
	LinesProcessed int64         `json:"lines_processed"`
	EntriesParsed  int64         `json:"entries_parsed"`
	ParseErrors    int64         `json:"parse_errors"`
	Duration       time.Duration `json:"-"`
	DurationSecs   float64       `json:"processing_time"`
}

// RunStats aggregates metrics for a whole ingest run
type RunStats struct {
	RunID      string    `json:"run_id"`
	Nginx      TypeStats `json:"nginx"`
	Nexus      TypeStats `json:"nexus"`
	StartedAt  time.Time `json:"start_time"`
	FinishedAt time.Time `json:"end_time"`
}

// TotalEntries returns the number of rows stored across both log types
func (s *RunStats) TotalEntries() int64 {
	return s.Nginx.EntriesParsed + s.Nexus.EntriesParsed
}

// TotalErrors returns the number of unparseable lines across both log types
func (s *RunStats) TotalErrors() int64 {
	return s.Nginx.ParseErrors + s.Nexus.ParseErrors
}

// Orchestrator coordinates resolver, parsers and batch writer
type Orchestrator struct {
	cfg *config.Config
	db  database.DB
	log *zap.Logger
}

// New creates an ingest orchestrator
func New(cfg *config.Config, db database.DB, log *zap.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, db: db, log: log}
}

// Run ingests all configured log sources. Unless appendMode is set, the
// log tables are cleared first so the run replaces previous data. The two
// log types are ingested concurrently; a failure in one cancels the other.
func (o *Orchestrator) Run(ctx context.Context, appendMode bool) (*RunStats, error) {
	stats := &RunStats{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := o.log.With(zap.String("run_id", stats.RunID))

	if !appendMode {
		for _, table := range []string{"nginx_logs", "nexus_logs"} {
			if err := database.ClearTable(o.db, table); err != nil {
				return nil, err
			}
		}
		log.Info("cleared existing log tables (replace mode)")
	}

	g, gctx := errgroup.WithContext(ctx)

	if o.cfg.NginxDir != "" {
		g.Go(func() error {
			return o.ingestNginx(gctx, log, &stats.Nginx)
		})
	} else {
		log.Info("nginx directory not configured, skipping nginx ingest")
	}

	if o.cfg.NexusDir != "" {
		g.Go(func() error {
			return o.ingestNexus(gctx, log, &stats.Nexus)
		})
	} else {
		log.Info("nexus directory not configured, skipping nexus ingest")
	}

	err := g.Wait()
	stats.FinishedAt = time.Now()
	stats.Nginx.DurationSecs = stats.Nginx.Duration.Seconds()
	stats.Nexus.DurationSecs = stats.Nexus.Duration.Seconds()

	log.Info("ingest run finished",
		zap.Int64("total_entries", stats.TotalEntries()),
		zap.Int64("total_parse_errors", stats.TotalErrors()),
		zap.Duration("elapsed", stats.FinishedAt.Sub(stats.StartedAt)))

	return stats, err
}

// ingestNginx resolves and ingests all nginx log sources
func (o *Orchestrator) ingestNginx(ctx context.Context, log *zap.Logger, stats *TypeStats) error {
	start := time.Now()
	defer func() { stats.Duration = time.Since(start) }()

	log = log.Named("nginx")
	p := parser.NewNginxParser()
	resolver := archive.NewResolver(o.cfg.MaxArchiveDepth, o.cfg.MaxFileBytes, log)

	return resolver.Walk(ctx, o.cfg.NginxDir, o.cfg.NginxPatterns(), func(src archive.Source) error {
		source := "nginx:" + src.Lineage
		batch := make([]models.NginxEntry, 0, o.cfg.BatchSize)

		flush := func() error {
			n, err := database.InsertNginxBatch(o.db, batch)
			stats.EntriesParsed += n
			batch = batch[:0]
			return err
		}

		fileStats, scanErr := scanLines(src.Reader, o.cfg.ChunkSize, log, source, func(line string, lineNo int) bool {
			entry, err := p.Parse(line, lineNo, source)
			if err != nil {
				log.Warn("parse error", zap.String("source", source), zap.Int("line", lineNo), zap.Error(err))
				return false
			}
			batch = append(batch, *entry)
			if len(batch) >= o.cfg.BatchSize {
				if err := flush(); err != nil {
					log.Error("batch insert failed", zap.String("source", source), zap.Error(err))
				}
			}
			return true
		})

		if err := flush(); err != nil {
			log.Error("batch insert failed", zap.String("source", source), zap.Error(err))
		}

		stats.FilesProcessed++
		stats.LinesProcessed += fileStats.lines
		stats.ParseErrors += fileStats.parseErrors

		if scanErr != nil {
			// A truncated or oversized stream fails this file only
			log.Error("failed reading source", zap.String("source", source), zap.Error(scanErr))
		} else {
			log.Info("ingested source",
				zap.String("source", source),
				zap.Int64("lines", fileStats.lines),
				zap.Int64("parse_errors", fileStats.parseErrors))
		}
		return nil
	})
}

// ingestNexus resolves and ingests all Nexus log sources
func (o *Orchestrator) ingestNexus(ctx context.Context, log *zap.Logger, stats *TypeStats) error {
	start := time.Now()
	defer func() { stats.Duration = time.Since(start) }()

	log = log.Named("nexus")
	p := parser.NewNexusParser()
	resolver := archive.NewResolver(o.cfg.MaxArchiveDepth, o.cfg.MaxFileBytes, log)

	return resolver.Walk(ctx, o.cfg.NexusDir, o.cfg.NexusPatterns(), func(src archive.Source) error {
		source := "nexus:" + src.Lineage
		batch := make([]models.NexusEntry, 0, o.cfg.BatchSize)

		flush := func() error {
			n, err := database.InsertNexusBatch(o.db, batch)
			stats.EntriesParsed += n
			batch = batch[:0]
			return err
		}

		fileStats, scanErr := scanLines(src.Reader, o.cfg.ChunkSize, log, source, func(line string, lineNo int) bool {
			entry, err := p.Parse(line, lineNo, source)
			if err != nil {
				log.Warn("parse error", zap.String("source", source), zap.Int("line", lineNo), zap.Error(err))
				return false
			}
			batch = append(batch, *entry)
			if len(batch) >= o.cfg.BatchSize {
				if err := flush(); err != nil {
					log.Error("batch insert failed", zap.String("source", source), zap.Error(err))
				}
			}
			return true
		})

		if err := flush(); err != nil {
			log.Error("batch insert failed", zap.String("source", source), zap.Error(err))
		}

		stats.FilesProcessed++
		stats.LinesProcessed += fileStats.lines
		stats.ParseErrors += fileStats.parseErrors

		if scanErr != nil {
			log.Error("failed reading source", zap.String("source", source), zap.Error(scanErr))
		} else {
			log.Info("ingested source",
				zap.String("source", source),
				zap.Int64("lines", fileStats.lines),
				zap.Int64("parse_errors", fileStats.parseErrors))
		}
		return nil
	})
}
