package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/clipvault/internal/core/domain"
	"github.com/custodia-labs/clipvault/internal/core/ports/driving"
)

// mockStoreService returns canned values and records the search and
// page calls the server makes.
type mockStoreService struct {
	response  domain.SearchResponse
	searchErr error
	item      *domain.Item
	getErr    error
	page      domain.Page
	pageErr   error

	lastQuery string
	lastOpts  domain.SearchOptions
	pageLimit int
}

var _ driving.StoreService = (*mockStoreService)(nil)

func (m *mockStoreService) SaveText(context.Context, string, string, string) (int64, error) {
	return 0, nil
}

func (m *mockStoreService) SaveImage(context.Context, driving.SaveImageRequest) (int64, error) {
	return 0, nil
}

func (m *mockStoreService) SaveFiles(context.Context, driving.SaveFilesRequest) (int64, error) {
	return 0, nil
}

func (m *mockStoreService) Search(_ context.Context, query string, opts domain.SearchOptions) (domain.SearchResponse, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.searchErr != nil {
		return domain.SearchResponse{}, m.searchErr
	}
	return m.response, nil
}

func (m *mockStoreService) FetchPage(_ context.Context, _ *time.Time, limit int) (domain.Page, error) {
	m.pageLimit = limit
	if m.pageErr != nil {
		return domain.Page{}, m.pageErr
	}
	return m.page, nil
}

func (m *mockStoreService) FetchByIDs(context.Context, []int64) ([]domain.Item, error) {
	return nil, nil
}

func (m *mockStoreService) Get(context.Context, int64) (*domain.Item, error) {
	if m.item == nil {
		return nil, m.getErrOr(domain.ErrNotFound)
	}
	return m.item, m.getErr
}

func (m *mockStoreService) getErrOr(fallback error) error {
	if m.getErr != nil {
		return m.getErr
	}
	return fallback
}

func (m *mockStoreService) CopyToClipboard(context.Context, int64) error { return nil }

func (m *mockStoreService) Touch(context.Context, int64) error { return nil }

func (m *mockStoreService) SetLinkMetadata(context.Context, int64, domain.LinkMetadata) error {
	return nil
}

func (m *mockStoreService) SetImageDescription(context.Context, int64, string) error { return nil }

func (m *mockStoreService) SetFileStatus(context.Context, int64, string, domain.FileStatus) error {
	return nil
}

func (m *mockStoreService) Delete(context.Context, int64) error { return nil }

func (m *mockStoreService) Clear(context.Context) error { return nil }

func (m *mockStoreService) Prune(context.Context, int64) (int, error) { return 0, nil }

func (m *mockStoreService) RebuildIndex(context.Context) (int, error) { return 0, nil }

func (m *mockStoreService) EnsureIndex(context.Context) (int, error) { return 0, nil }

func (m *mockStoreService) Stats(context.Context) (driving.StoreStats, error) {
	return driving.StoreStats{}, nil
}

func (m *mockStoreService) Close() error { return nil }
