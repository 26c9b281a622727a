package tui

import (
	"context"
	"time"

	"github.com/custodia-labs/clipvault/internal/core/domain"
	"github.com/custodia-labs/clipvault/internal/core/ports/driving"
)

// mockStoreService returns canned values and records the calls the
// picker makes.
type mockStoreService struct {
	response  domain.SearchResponse
	searchErr error
	copyErr   error

	queries   []string
	copiedIDs []int64
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

func (m *mockStoreService) Search(_ context.Context, query string, _ domain.SearchOptions) (domain.SearchResponse, error) {
	m.queries = append(m.queries, query)
	if m.searchErr != nil {
		return domain.SearchResponse{}, m.searchErr
	}
	return m.response, nil
}

func (m *mockStoreService) FetchPage(context.Context, *time.Time, int) (domain.Page, error) {
	return domain.Page{}, nil
}

func (m *mockStoreService) FetchByIDs(context.Context, []int64) ([]domain.Item, error) {
	return nil, nil
}

func (m *mockStoreService) Get(context.Context, int64) (*domain.Item, error) {
	return nil, domain.ErrNotFound
}

func (m *mockStoreService) CopyToClipboard(_ context.Context, id int64) error {
	if m.copyErr != nil {
		return m.copyErr
	}
	m.copiedIDs = append(m.copiedIDs, id)
	return nil
}

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
