// Package service composes the metadata sources, category settings, and
// reconciliation engine into the operations the API layer exposes.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/metadata/audible"
	"github.com/shelfmark/shelfmark-server/internal/metadata/googlebooks"
)

// MetadataService fetches book records and their supporting material from
// the upstream catalogs.
type MetadataService struct {
	books  *googlebooks.Client
	audio  *audible.Client
	region audible.Region
	logger *slog.Logger
}

// NewMetadataService creates a metadata service.
func NewMetadataService(books *googlebooks.Client, audio *audible.Client, region audible.Region, logger *slog.Logger) *MetadataService {
	if !region.Valid() {
		region = audible.RegionUS
	}
	return &MetadataService{
		books:  books,
		audio:  audio,
		region: region,
		logger: logger,
	}
}

// Lookup fetches the source record a session is opened for, by volume id
// or by ISBN.
func (s *MetadataService) Lookup(ctx context.Context, volumeID, isbn string) (*domain.SourceRecord, error) {
	if volumeID != "" {
		return s.books.GetVolume(ctx, volumeID)
	}
	return s.books.SearchByISBN(ctx, isbn)
}

// Enrich fetches the record's alternate editions and audiobook
// counterpart concurrently. Either source failing is logged and leaves
// that side empty; enrichment is best-effort and never blocks a session
// from opening.
func (s *MetadataService) Enrich(ctx context.Context, rec *domain.SourceRecord) ([]domain.Edition, *domain.AudiobookRecord) {
	var editions []domain.Edition
	var audiobook *domain.AudiobookRecord
	var wg sync.WaitGroup

	wg.Go(func() {
		result, err := s.books.Editions(ctx, rec)
		if err != nil {
			s.logger.Warn("edition lookup failed",
				"volume", rec.ID,
				"error", err,
			)
			return
		}
		editions = result
	})

	wg.Go(func() {
		author := ""
		if len(rec.Authors) > 0 {
			author = rec.Authors[0]
		}
		result, err := s.audio.FindMatch(ctx, s.region, rec.Title, author)
		if err != nil {
			s.logger.Warn("audiobook lookup failed",
				"title", rec.Title,
				"error", err,
			)
			return
		}
		audiobook = result
	})

	wg.Wait()
	return editions, audiobook
}
