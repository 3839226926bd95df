package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// Bulk-load contract: CSV with a header row, columns in
// table-declaration order. The loader always skips the header.

var bookColumns = []string{
	"book_id", "title", "author", "isbn", "published_date", "publisher", "genre", "price",
}

var saleColumns = []string{
	"sale_id", "book_id", "quantity", "sale_date", "customer_id", "region", "sale_amount",
}

// BooksCSV encodes catalog rows in dim_book column order.
func BooksCSV(books []Book) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(bookColumns); err != nil {
		return nil, fmt.Errorf("write books header: %w", err)
	}
	for _, b := range books {
		record := []string{
			strconv.FormatInt(b.BookID, 10),
			b.Title,
			b.Author,
			b.ISBN,
			b.PublishedDate.Format(time.DateOnly),
			b.Publisher,
			b.Genre,
			b.Price.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write book %d: %w", b.BookID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush books csv: %w", err)
	}
	return buf.Bytes(), nil
}

// SalesCSV encodes sale rows in fact_sales column order.
func SalesCSV(sales []Sale) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(saleColumns); err != nil {
		return nil, fmt.Errorf("write sales header: %w", err)
	}
	for _, s := range sales {
		record := []string{
			strconv.FormatInt(s.SaleID, 10),
			strconv.FormatInt(s.BookID, 10),
			strconv.Itoa(s.Quantity),
			s.SaleDate.UTC().Format(time.DateTime),
			s.CustomerID,
			s.Region,
			s.SaleAmount.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write sale %d: %w", s.SaleID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush sales csv: %w", err)
	}
	return buf.Bytes(), nil
}
