// Package export generates synthetic catalog and sales data, stages it
// as CSV, and bulk-loads it into the warehouse.
package export

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book is one dim_book row.
type Book struct {
	BookID        int64
	Title         string
	Author        string
	ISBN          string
	PublishedDate time.Time
	Publisher     string
	Genre         string
	Price         decimal.Decimal
}

// Sale is one fact_sales row.
type Sale struct {
	SaleID     int64
	BookID     int64
	Quantity   int
	SaleDate   time.Time
	CustomerID string
	Region     string
	SaleAmount decimal.Decimal
}

var genres = []string{
	"Fiction", "Science Fiction", "Fantasy", "Mystery", "Thriller",
	"Romance", "Western", "Dystopian", "Contemporary", "Historical Fiction",
	"Horror", "Young Adult", "Children's", "Biography", "Autobiography",
	"Memoir", "Cooking", "Art", "Self-help", "Development",
	"Motivational", "Health", "History", "Travel", "Guide",
	"Science", "Math", "Religion", "Spirituality", "True Crime",
	"Humor", "Essay", "Parenting", "Relationships", "Technology",
	"Business", "Economics", "Philosophy", "Psychology", "Politics",
}

var regions = []string{
	"North America", "South America", "Europe", "Asia", "Africa",
	"Australia", "Middle East", "Caribbean", "Central America", "Pacific",
}

var titleNouns = []string{
	"Garden", "Shadow", "River", "Mountain", "Library", "Harbor",
	"Winter", "Compass", "Lantern", "Orchard", "Letter", "Voyage",
}

var firstNames = []string{
	"Elena", "Marcus", "Priya", "Tomas", "Ingrid", "Kwame",
	"Sofia", "Daniel", "Yuki", "Amara", "Lars", "Noor",
}

var lastNames = []string{
	"Alvarez", "Okafor", "Lindqvist", "Tanaka", "Moreau", "Kowalski",
	"Haddad", "Fernandes", "Novak", "Osei", "Petrov", "Murphy",
}

var publishers = []string{
	"Harborview Press", "Quill & Crane", "Meridian House", "Foxglove Books",
	"Northlight Publishing", "Cedar Gate Press", "Atlas & Sons", "Bluestem Media",
}

// Generator produces deterministic-per-seed synthetic data.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator seeds a generator. now == nil uses time.Now.
func NewGenerator(seed int64, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rand.New(rand.NewSource(seed)), now: now}
}

// Books generates n catalog rows with sequential ids starting at 1.
func (g *Generator) Books(n int) []Book {
	books := make([]Book, 0, n)
	today := g.now()
	for i := 1; i <= n; i++ {
		books = append(books, Book{
			BookID:        int64(i),
			Title:         g.title(),
			Author:        g.pick(firstNames) + " " + g.pick(lastNames),
			ISBN:          g.isbn13(),
			PublishedDate: today.AddDate(0, 0, -g.rng.Intn(20*365)),
			Publisher:     g.pick(publishers),
			Genre:         g.pick(genres),
			// $4.99 to $59.99
			Price: decimal.NewFromInt(int64(499 + g.rng.Intn(5501))).Div(decimal.NewFromInt(100)),
		})
	}
	return books
}

// Sales generates n sale rows against the given catalog, spread over
// the last two years. Quantities skew heavily toward single-copy
// purchases; roughly a third of sales carry a 10-40% discount.
func (g *Generator) Sales(n int, books []Book) []Sale {
	sales := make([]Sale, 0, n)
	end := g.now()
	rangeSeconds := int64(730 * 24 * 3600)
	for i := 1; i <= n; i++ {
		book := books[g.rng.Intn(len(books))]
		qty := g.quantity()

		amount := book.Price.Mul(decimal.NewFromInt(int64(qty)))
		if g.rng.Float64() < 0.3 {
			discount := 0.1 + g.rng.Float64()*0.3
			amount = amount.Mul(decimal.NewFromFloat(1 - discount))
		}

		sales = append(sales, Sale{
			SaleID:     int64(i),
			BookID:     book.BookID,
			Quantity:   qty,
			SaleDate:   end.Add(-time.Duration(g.rng.Int63n(rangeSeconds)) * time.Second),
			CustomerID: uuid.NewString(),
			Region:     g.pick(regions),
			SaleAmount: amount.Round(2),
		})
	}
	return sales
}

func (g *Generator) quantity() int {
	// 1-5 copies weighted 70/15/10/3/2
	r := g.rng.Intn(100)
	switch {
	case r < 70:
		return 1
	case r < 85:
		return 2
	case r < 95:
		return 3
	case r < 98:
		return 4
	default:
		return 5
	}
}

func (g *Generator) title() string {
	if g.rng.Float64() < 0.5 {
		return fmt.Sprintf("The %s of %s", g.pick(titleNouns), g.pick(titleNouns))
	}
	return fmt.Sprintf("%s %s", g.pick(titleNouns), g.pick(titleNouns))
}

// isbn13 emits 12 random digits plus a simple mod-10 checksum digit.
func (g *Generator) isbn13() string {
	digits := make([]byte, 0, 13)
	sum := 0
	for i := 0; i < 12; i++ {
		d := g.rng.Intn(10)
		sum += d
		digits = append(digits, byte('0'+d))
	}
	digits = append(digits, byte('0'+sum%10))
	return string(digits)
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}
