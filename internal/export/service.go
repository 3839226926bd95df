package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// uploader is the staging surface the service needs.
type uploader interface {
	Upload(ctx context.Context, key string, body []byte) (string, error)
}

// bulkLoader is the warehouse load surface the service needs. nil
// disables loading (stage-only mode).
type bulkLoader interface {
	Load(ctx context.Context, table, s3URI string) error
}

// Service generates synthetic data, stages both CSVs concurrently, and
// optionally bulk-loads them into the warehouse.
type Service struct {
	uploader uploader
	loader   bulkLoader
	now      func() time.Time
}

// NewService wires the export pipeline. loader may be nil when the
// warehouse is not configured.
func NewService(up uploader, loader bulkLoader, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{uploader: up, loader: loader, now: now}
}

// Result reports where the generated files landed.
type Result struct {
	BooksKey string `json:"books_key"`
	SalesKey string `json:"sales_key"`
	BooksURI string `json:"books_uri"`
	SalesURI string `json:"sales_uri"`
	Loaded   bool   `json:"loaded"`
	NumBooks int    `json:"num_books"`
	NumSales int    `json:"num_sales"`
}

// Generate produces numBooks catalog rows and numSales sales, stages
// them under a date-based prefix, and bulk-loads unless skipLoad is
// set or no loader is configured.
func (s *Service) Generate(ctx context.Context, numBooks, numSales int, skipLoad bool) (*Result, error) {
	gen := NewGenerator(s.now().UnixNano(), s.now)
	books := gen.Books(numBooks)
	sales := gen.Sales(numSales, books)

	booksCSV, err := BooksCSV(books)
	if err != nil {
		return nil, err
	}
	salesCSV, err := SalesCSV(sales)
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC()
	datePrefix := stamp.Format("2006/01/02")
	suffix := stamp.Format("20060102_150405")
	result := &Result{
		BooksKey: fmt.Sprintf("books/%s/books_%s.csv", datePrefix, suffix),
		SalesKey: fmt.Sprintf("sales/%s/sales_%s.csv", datePrefix, suffix),
		NumBooks: numBooks,
		NumSales: numSales,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		uri, err := s.uploader.Upload(gctx, result.BooksKey, booksCSV)
		result.BooksURI = uri
		return err
	})
	g.Go(func() error {
		uri, err := s.uploader.Upload(gctx, result.SalesKey, salesCSV)
		result.SalesURI = uri
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("staging upload failed: %w", err)
	}

	if skipLoad || s.loader == nil {
		slog.Info("[Export] Staged without loading", "books", result.BooksKey, "sales", result.SalesKey)
		return result, nil
	}

	// Dimension rows first so fact rows never reference a missing book.
	if err := s.loader.Load(ctx, "analytics.dim_book", result.BooksURI); err != nil {
		return nil, err
	}
	if err := s.loader.Load(ctx, "analytics.fact_sales", result.SalesURI); err != nil {
		return nil, err
	}
	result.Loaded = true
	return result, nil
}
