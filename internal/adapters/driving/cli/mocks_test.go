package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/clipvault/internal/core/domain"
	"github.com/custodia-labs/clipvault/internal/core/ports/driving"
)

// mockStoreService is a canned implementation of driving.StoreService.
// Zero-value fields return zero values; err fails every call.
type mockStoreService struct {
	savedID  int64
	response domain.SearchResponse
	page     domain.Page
	items    []domain.Item
	item     *domain.Item
	stats    driving.StoreStats
	pruned   int
	rebuilt  int
	err      error

	savedTexts   []string
	savedImages  []driving.SaveImageRequest
	savedFiles   []driving.SaveFilesRequest
	copiedIDs    []int64
	touchedIDs   []int64
	deletedIDs   []int64
	cleared      bool
	descriptions map[int64]string
	pruneTarget  int64
	lastQuery    string
	lastOpts     domain.SearchOptions
}

func (m *mockStoreService) SaveText(_ context.Context, text, _, _ string) (int64, error) {
	m.savedTexts = append(m.savedTexts, text)
	return m.savedID, m.err
}

func (m *mockStoreService) SaveImage(_ context.Context, req driving.SaveImageRequest) (int64, error) {
	m.savedImages = append(m.savedImages, req)
	return m.savedID, m.err
}

func (m *mockStoreService) SaveFiles(_ context.Context, req driving.SaveFilesRequest) (int64, error) {
	m.savedFiles = append(m.savedFiles, req)
	return m.savedID, m.err
}

func (m *mockStoreService) Search(_ context.Context, query string, opts domain.SearchOptions) (domain.SearchResponse, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.response, m.err
}

func (m *mockStoreService) FetchPage(_ context.Context, _ *time.Time, _ int) (domain.Page, error) {
	return m.page, m.err
}

func (m *mockStoreService) FetchByIDs(_ context.Context, _ []int64) ([]domain.Item, error) {
	return m.items, m.err
}

func (m *mockStoreService) Get(_ context.Context, _ int64) (*domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.item == nil {
		return nil, domain.ErrNotFound
	}
	return m.item, nil
}

func (m *mockStoreService) CopyToClipboard(_ context.Context, id int64) error {
	m.copiedIDs = append(m.copiedIDs, id)
	return m.err
}

func (m *mockStoreService) Touch(_ context.Context, id int64) error {
	m.touchedIDs = append(m.touchedIDs, id)
	return m.err
}

func (m *mockStoreService) SetLinkMetadata(_ context.Context, _ int64, _ domain.LinkMetadata) error {
	return m.err
}

func (m *mockStoreService) SetImageDescription(_ context.Context, id int64, description string) error {
	if m.descriptions == nil {
		m.descriptions = make(map[int64]string)
	}
	m.descriptions[id] = description
	return m.err
}

func (m *mockStoreService) SetFileStatus(_ context.Context, _ int64, _ string, _ domain.FileStatus) error {
	return m.err
}

func (m *mockStoreService) Delete(_ context.Context, id int64) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return m.err
}

func (m *mockStoreService) Clear(_ context.Context) error {
	m.cleared = true
	return m.err
}

func (m *mockStoreService) Prune(_ context.Context, targetBytes int64) (int, error) {
	m.pruneTarget = targetBytes
	return m.pruned, m.err
}

func (m *mockStoreService) RebuildIndex(_ context.Context) (int, error) {
	return m.rebuilt, m.err
}

func (m *mockStoreService) EnsureIndex(_ context.Context) (int, error) {
	return 0, nil
}

func (m *mockStoreService) Stats(_ context.Context) (driving.StoreStats, error) {
	return m.stats, m.err
}

func (m *mockStoreService) Close() error {
	return nil
}

// setupTestServices installs a populated mock store service and
// returns a cleanup restoring the previous one.
func setupTestServices() func() {
	old := storeService
	storeService = defaultMockStore()
	return func() {
		storeService = old
	}
}

// installMock swaps in a specific mock and returns a cleanup.
func installMock(m *mockStoreService) func() {
	old := storeService
	storeService = m
	return func() {
		storeService = old
	}
}

func defaultMockStore() *mockStoreService {
	now := time.Now()
	return &mockStoreService{
		savedID: 1,
		response: domain.SearchResponse{
			Matches: []domain.ItemMatch{
				{
					Item: domain.Item{
						ID:        42,
						Kind:      domain.KindText,
						Content:   "deploy keys rotated for staging",
						Timestamp: now.Add(-2 * time.Hour),
						SourceApp: "Terminal",
					},
					Match: domain.MatchData{
						Snippet:    "deploy keys rotated for staging",
						Highlights: []domain.HighlightRange{{Start: 0, End: 6, Kind: domain.HighlightExact}},
						LineNumber: 1,
					},
				},
				{
					Item: domain.Item{
						ID:        7,
						Kind:      domain.KindLink,
						Content:   "https://blog.example/deploys",
						Timestamp: now.Add(-48 * time.Hour),
						Link:      &domain.LinkMetadata{State: domain.LinkStateLoaded, Title: "Deploys"},
					},
					Match: domain.MatchData{
						Snippet:    "https://blog.example/deploys",
						LineNumber: 1,
					},
				},
			},
			TotalCount: 2,
		},
		page: domain.Page{
			Items: []domain.Item{
				{ID: 3, Kind: domain.KindText, Content: "latest entry", Timestamp: now.Add(-time.Minute)},
				{ID: 2, Kind: domain.KindColor, Content: "#336699", Color: domain.NewColorRGBA(0x33, 0x66, 0x99, 0xff), Timestamp: now.Add(-time.Hour)},
			},
			HasMore: false,
		},
		item: &domain.Item{
			ID:        42,
			Kind:      domain.KindText,
			Content:   "deploy keys rotated for staging",
			Timestamp: now.Add(-2 * time.Hour),
			SourceApp: "Terminal",
		},
		stats: driving.StoreStats{
			Items:            5,
			ByKind:           map[domain.ContentKind]int64{domain.KindText: 4, domain.KindLink: 1},
			IndexedDocuments: 5,
			StoreBytes:       4 << 20,
			IndexBytes:       1 << 20,
			Oldest:           now.Add(-30 * 24 * time.Hour),
		},
		pruned:  3,
		rebuilt: 5,
	}
}
