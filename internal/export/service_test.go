package export

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte)}
}

func (f *fakeUploader) Upload(_ context.Context, key string, body []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
	return "s3://staging/" + key, nil
}

type fakeLoader struct {
	loads []string
	err   error
}

func (f *fakeLoader) Load(_ context.Context, table, s3URI string) error {
	if f.err != nil {
		return f.err
	}
	f.loads = append(f.loads, table)
	return nil
}

func TestGenerate_StagesAndLoadsDimensionFirst(t *testing.T) {
	up := newFakeUploader()
	ld := &fakeLoader{}
	now := func() time.Time { return time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC) }
	svc := NewService(up, ld, now)

	result, err := svc.Generate(context.Background(), 10, 50, false)
	require.NoError(t, err)

	require.Equal(t, "books/2024/06/01/books_20240601_093000.csv", result.BooksKey)
	require.Equal(t, "sales/2024/06/01/sales_20240601_093000.csv", result.SalesKey)
	require.True(t, result.Loaded)
	require.Equal(t, 10, result.NumBooks)
	require.Equal(t, 50, result.NumSales)

	// Both CSVs staged with header rows.
	require.Len(t, up.objects, 2)
	for key, body := range up.objects {
		lines := strings.Split(strings.TrimSpace(string(body)), "\n")
		if strings.HasPrefix(key, "books/") {
			require.Len(t, lines, 11)
		} else {
			require.Len(t, lines, 51)
		}
	}

	// Catalog rows land before the facts that reference them.
	require.Equal(t, []string{"analytics.dim_book", "analytics.fact_sales"}, ld.loads)
}

func TestGenerate_SkipLoadStagesOnly(t *testing.T) {
	up := newFakeUploader()
	ld := &fakeLoader{}
	svc := NewService(up, ld, nil)

	result, err := svc.Generate(context.Background(), 5, 5, true)
	require.NoError(t, err)
	require.False(t, result.Loaded)
	require.Empty(t, ld.loads)
	require.Len(t, up.objects, 2)
}

func TestGenerate_NilLoaderStagesOnly(t *testing.T) {
	up := newFakeUploader()
	svc := NewService(up, nil, nil)

	result, err := svc.Generate(context.Background(), 5, 5, false)
	require.NoError(t, err)
	require.False(t, result.Loaded)
}

func TestGenerate_UploadFailureAbortsBeforeLoad(t *testing.T) {
	up := newFakeUploader()
	up.err = errors.New("access denied")
	ld := &fakeLoader{}
	svc := NewService(up, ld, nil)

	_, err := svc.Generate(context.Background(), 5, 5, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "staging upload failed")
	require.Empty(t, ld.loads)
}

func TestGenerate_LoadFailurePropagates(t *testing.T) {
	up := newFakeUploader()
	ld := &fakeLoader{err: errors.New("copy failed")}
	svc := NewService(up, ld, nil)

	_, err := svc.Generate(context.Background(), 5, 5, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "copy failed")
}
