package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/clipvault/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/clipvault/internal/core/domain"
	"github.com/custodia-labs/clipvault/internal/core/ports/driven"
)

// Ensure ItemStore implements the interface.
var _ driven.ItemStore = (*ItemStore)(nil)

// pruneBatchSize is how many items a prune pass deletes per statement.
const pruneBatchSize = 100

// metaColumns are the item columns the search hydrator and list pages
// select. Blob payloads are loaded only by GetByID and GetByIDs.
const metaColumns = `id, kind, content, content_hash, timestamp, source_app,
	source_bundle_id, color_rgba, link_state, link_title, link_description, link_image_url`

// fullColumns extends metaColumns with the blob payloads.
const fullColumns = metaColumns + `, image_data, thumbnail`

// ItemStore is the SQLite-backed item store. Items live in a single
// table tagged by kind; file attachments live in item_files with
// cascade deletes. index_text holds the precomputed index projection
// so the scan paths and rebuilds never reassemble it from variant
// columns.
type ItemStore struct {
	db   *sql.DB
	path string
}

// NewItemStore opens (or creates) the store under dataDir. An empty
// dataDir defaults to ~/.clipvault/data.
func NewItemStore(dataDir string) (*ItemStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".clipvault", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// WAL keeps readers unblocked during the dual-write.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &ItemStore{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *ItemStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *ItemStore) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *ItemStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Save inserts the item, or refreshes the timestamp of the row that
// already holds its content hash.
func (s *ItemStore) Save(ctx context.Context, item *domain.Item) (int64, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existing int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM items WHERE content_hash = ?", item.ContentHash).Scan(&existing)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			"UPDATE items SET timestamp = ? WHERE id = ?",
			item.Timestamp.UTC(), existing); err != nil {
			return 0, false, fmt.Errorf("refreshing duplicate: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return 0, false, fmt.Errorf("committing transaction: %w", err)
		}
		return existing, true, nil
	case errors.Is(err, sql.ErrNoRows):
		// New content, insert below.
	default:
		return 0, false, fmt.Errorf("checking content hash: %w", err)
	}

	var linkState, linkTitle, linkDesc, linkImage sql.NullString
	if item.Link != nil {
		linkState = sql.NullString{String: string(item.Link.State), Valid: true}
		linkTitle = nullString(item.Link.Title)
		linkDesc = nullString(item.Link.Description)
		linkImage = nullString(item.Link.ImageURL)
	}
	var color sql.NullInt64
	if item.Kind == domain.KindColor {
		color = sql.NullInt64{Int64: int64(item.Color), Valid: true}
	}
	var imageData []byte
	if item.Image != nil {
		imageData = item.Image.Data
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO items (kind, content, content_hash, index_text, timestamp,
			source_app, source_bundle_id, color_rgba,
			link_state, link_title, link_description, link_image_url,
			image_data, thumbnail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.Kind.String(), item.Content, item.ContentHash, item.IndexText(),
		item.Timestamp.UTC(), nullString(item.SourceApp), nullString(item.SourceBundleID),
		color, linkState, linkTitle, linkDesc, linkImage, imageData, item.Thumbnail)
	if err != nil {
		return 0, false, fmt.Errorf("inserting item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("reading new item id: %w", err)
	}

	if len(item.Files) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO item_files (item_id, position, path, filename,
				size_bytes, type_id, locator, status, is_primary)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return 0, false, fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		for i, f := range item.Files {
			status := f.Status
			if status == "" {
				status = domain.FileStatusOK
			}
			if _, err := stmt.ExecContext(ctx, id, i, f.Path, f.Filename,
				f.SizeBytes, nullString(f.TypeID), f.Locator, status.String(), f.IsPrimary); err != nil {
				return 0, false, fmt.Errorf("inserting attachment: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("committing transaction: %w", err)
	}
	return id, false, nil
}

// GetByID retrieves one item with its full payload.
func (s *ItemStore) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+fullColumns+" FROM items WHERE id = ?", id)

	item, err := scanFullItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if item.Kind == domain.KindFile {
		files, err := s.loadFiles(ctx, []int64{id})
		if err != nil {
			return nil, err
		}
		item.Files = files[id]
	}
	return &item, nil
}

// GetByIDs retrieves items with full payloads, preserving input
// order and skipping missing ids.
func (s *ItemStore) GetByIDs(ctx context.Context, ids []int64) ([]domain.Item, error) {
	return s.getByIDs(ctx, ids, nil, true)
}

// GetMetadataByIDs is the search-path hydrator. Blob columns are
// never selected; image items keep their description only.
func (s *ItemStore) GetMetadataByIDs(ctx context.Context, ids []int64, kinds []domain.ContentKind) ([]domain.Item, error) {
	return s.getByIDs(ctx, ids, kinds, false)
}

func (s *ItemStore) getByIDs(ctx context.Context, ids []int64, kinds []domain.ContentKind, withBlobs bool) ([]domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cols := metaColumns
	if withBlobs {
		cols = fullColumns
	}
	query := "SELECT " + cols + " FROM items WHERE id IN (" + placeholders(len(ids)) + ")"
	args := make([]any, 0, len(ids)+len(kinds))
	for _, id := range ids {
		args = append(args, id)
	}
	if len(kinds) > 0 {
		query += " AND kind IN (" + placeholders(len(kinds)) + ")"
		for _, k := range kinds {
			args = append(args, k.String())
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]domain.Item, len(ids))
	var fileIDs []int64
	for rows.Next() {
		var item domain.Item
		if withBlobs {
			item, err = scanFullItem(rows)
		} else {
			item, err = scanMetaItem(rows)
		}
		if err != nil {
			return nil, err
		}
		if item.Kind == domain.KindFile {
			fileIDs = append(fileIDs, item.ID)
		}
		byID[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	if len(fileIDs) > 0 {
		files, err := s.loadFiles(ctx, fileIDs)
		if err != nil {
			return nil, err
		}
		for _, id := range fileIDs {
			item := byID[id]
			item.Files = files[id]
			byID[id] = item
		}
	}

	out := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// GetPage returns items strictly older than before, newest first,
// ties broken by id. Keyset pagination.
func (s *ItemStore) GetPage(ctx context.Context, before *time.Time, limit int) (domain.Page, error) {
	query := "SELECT " + metaColumns + " FROM items"
	var args []any
	if before != nil {
		query += " WHERE timestamp < ?"
		args = append(args, before.UTC())
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	// One probe row past the page detects whether more items follow.
	if limit > 0 {
		args = append(args, limit+1)
	} else {
		args = append(args, -1)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.Page{}, fmt.Errorf("querying page: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	var fileIDs []int64
	for rows.Next() {
		item, err := scanMetaItem(rows)
		if err != nil {
			return domain.Page{}, err
		}
		if item.Kind == domain.KindFile {
			fileIDs = append(fileIDs, item.ID)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Page{}, fmt.Errorf("iterating page: %w", err)
	}

	hasMore := false
	if limit > 0 && len(items) > limit {
		items = items[:limit]
		hasMore = true
	}

	if len(fileIDs) > 0 {
		files, err := s.loadFiles(ctx, fileIDs)
		if err != nil {
			return domain.Page{}, err
		}
		for i := range items {
			if items[i].Kind == domain.KindFile {
				items[i].Files = files[items[i].ID]
			}
		}
	}

	return domain.Page{Items: items, HasMore: hasMore}, nil
}

// SearchPrefix returns candidates whose index text starts with
// prefix, case-insensitive, newest first. Served by the NOCASE index.
func (s *ItemStore) SearchPrefix(ctx context.Context, prefix string, limit int) ([]domain.SearchCandidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, index_text, timestamp FROM items
		WHERE index_text LIKE ? ESCAPE '\' COLLATE NOCASE
		ORDER BY timestamp DESC, id DESC LIMIT ?
	`, escapeLike(prefix)+"%", probeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying prefix candidates: %w", err)
	}
	defer rows.Close()
	return scanCandidates(rows, limit)
}

// SearchRecentSubstring returns candidates containing needle among
// the scanLimit most recent items. The inner id set keeps the
// unindexed LIKE bounded.
func (s *ItemStore) SearchRecentSubstring(ctx context.Context, needle string, scanLimit, limit int) ([]domain.SearchCandidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, index_text, timestamp FROM items
		WHERE id IN (SELECT id FROM items ORDER BY timestamp DESC, id DESC LIMIT ?)
			AND index_text LIKE ? ESCAPE '\' COLLATE NOCASE
		ORDER BY timestamp DESC, id DESC LIMIT ?
	`, probeLimit(scanLimit), "%"+escapeLike(needle)+"%", probeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying substring candidates: %w", err)
	}
	defer rows.Close()
	return scanCandidates(rows, limit)
}

// Touch refreshes an item's timestamp.
func (s *ItemStore) Touch(ctx context.Context, id int64, ts time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE items SET timestamp = ? WHERE id = ?", ts.UTC(), id)
	if err != nil {
		return fmt.Errorf("touching item: %w", err)
	}
	return requireRow(res)
}

// UpdateLinkMetadata transitions a link item's metadata state and
// refreshes the persisted index projection.
func (s *ItemStore) UpdateLinkMetadata(ctx context.Context, id int64, meta domain.LinkMetadata) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var kind, content string
	err = tx.QueryRowContext(ctx,
		"SELECT kind, content FROM items WHERE id = ?", id).Scan(&kind, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading item: %w", err)
	}
	if domain.ContentKind(kind) != domain.KindLink {
		return fmt.Errorf("%w: %s item has no link metadata", domain.ErrInvalidInput, kind)
	}

	m := meta
	indexText := domain.Item{Kind: domain.KindLink, Content: content, Link: &m}.IndexText()
	_, err = tx.ExecContext(ctx, `
		UPDATE items SET link_state = ?, link_title = ?, link_description = ?,
			link_image_url = ?, index_text = ?
		WHERE id = ?
	`, string(meta.State), nullString(meta.Title), nullString(meta.Description),
		nullString(meta.ImageURL), indexText, id)
	if err != nil {
		return fmt.Errorf("updating link metadata: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// UpdateImageDescription replaces an image item's searchable text.
// The description doubles as the item content and index projection.
func (s *ItemStore) UpdateImageDescription(ctx context.Context, id int64, description string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var kind string
	err = tx.QueryRowContext(ctx, "SELECT kind FROM items WHERE id = ?", id).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading item: %w", err)
	}
	if domain.ContentKind(kind) != domain.KindImage {
		return fmt.Errorf("%w: %s item has no image description", domain.ErrInvalidInput, kind)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE items SET content = ?, index_text = ? WHERE id = ?",
		description, description, id)
	if err != nil {
		return fmt.Errorf("updating image description: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// UpdateFileStatus records resolution results for one attachment.
// Paths the item does not carry are a no-op.
func (s *ItemStore) UpdateFileStatus(ctx context.Context, id int64, path string, status domain.FileStatus) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM items WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading item: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE item_files SET status = ? WHERE item_id = ? AND path = ?",
		status.String(), id, path)
	if err != nil {
		return fmt.Errorf("updating file status: %w", err)
	}
	return nil
}

// Delete removes an item. Attachments cascade; missing ids are a no-op.
func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// Clear removes every item.
func (s *ItemStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM items"); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}
	return nil
}

// Prune deletes the oldest items, batch by batch, until the
// projected file size sits at lowWater of targetBytes, then reclaims
// the freed pages. The projection divides the current file size by
// the item count; exact per-row accounting is not worth a full table
// walk over blob columns.
func (s *ItemStore) Prune(ctx context.Context, targetBytes int64, lowWater float64) ([]int64, error) {
	size, err := s.SizeBytes(ctx)
	if err != nil {
		return nil, err
	}
	if size <= targetBytes {
		return nil, nil
	}

	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	avg := size / count
	if avg < 1 {
		avg = 1
	}

	floor := int64(float64(targetBytes) * lowWater)
	projected := size
	var deleted []int64

	for projected > floor {
		if ctx.Err() != nil {
			return deleted, fmt.Errorf("%w: prune stopped after %d items", domain.ErrInterrupted, len(deleted))
		}

		// Never fetch more than the projection still calls for.
		need := (projected - floor + avg - 1) / avg
		limit := pruneBatchSize
		if need < int64(limit) {
			limit = int(need)
		}
		batch, err := s.oldestIDs(ctx, limit)
		if err != nil {
			return deleted, err
		}
		if len(batch) == 0 {
			break
		}

		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM items WHERE id IN ("+placeholders(len(batch))+")", args...); err != nil {
			return deleted, fmt.Errorf("deleting batch: %w", err)
		}
		deleted = append(deleted, batch...)
		projected -= int64(len(batch)) * avg
	}

	if len(deleted) > 0 {
		if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
			return deleted, fmt.Errorf("reclaiming space: %w", err)
		}
	}
	return deleted, nil
}

func (s *ItemStore) oldestIDs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM items ORDER BY timestamp ASC, id ASC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying oldest items: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ids: %w", err)
	}
	return ids, nil
}

// IndexRows returns index projections for items with id > afterID,
// ascending, up to limit. Drives index rebuilds.
func (s *ItemStore) IndexRows(ctx context.Context, afterID int64, limit int) ([]domain.IndexedDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, index_text, timestamp FROM items
		WHERE id > ? ORDER BY id ASC LIMIT ?
	`, afterID, probeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying index rows: %w", err)
	}
	defer rows.Close()

	var docs []domain.IndexedDocument
	for rows.Next() {
		var doc domain.IndexedDocument
		var ts sql.NullTime
		if err := rows.Scan(&doc.ID, &doc.Content, &ts); err != nil {
			return nil, fmt.Errorf("scanning index row: %w", err)
		}
		doc.Timestamp = ts.Time
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index rows: %w", err)
	}
	return docs, nil
}

// Count returns the number of live items.
func (s *ItemStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// Oldest returns the capture time of the oldest live item.
func (s *ItemStore) Oldest(ctx context.Context) (time.Time, error) {
	var ts sql.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT timestamp FROM items ORDER BY timestamp ASC, id ASC LIMIT 1").Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying oldest item: %w", err)
	}
	return ts.Time, nil
}

// CountByKind returns live item counts grouped by content kind.
func (s *ItemStore) CountByKind(ctx context.Context) (map[domain.ContentKind]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM items GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("counting items by kind: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.ContentKind]int64)
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning kind count: %w", err)
		}
		out[domain.ContentKind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating kind counts: %w", err)
	}
	return out, nil
}

// SizeBytes reports the database file size from the page stats.
func (s *ItemStore) SizeBytes(ctx context.Context) (int64, error) {
	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0, fmt.Errorf("reading page count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, fmt.Errorf("reading page size: %w", err)
	}
	return pageCount * pageSize, nil
}

// loadFiles fetches attachments for the given item ids, grouped by
// item, in stored position order.
func (s *ItemStore) loadFiles(ctx context.Context, ids []int64) (map[int64][]domain.FileAttachment, error) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, path, filename, size_bytes, type_id, locator, status, is_primary
		FROM item_files WHERE item_id IN (`+placeholders(len(ids))+`)
		ORDER BY item_id, position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attachments: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]domain.FileAttachment, len(ids))
	for rows.Next() {
		var itemID int64
		var f domain.FileAttachment
		var typeID sql.NullString
		var status string
		if err := rows.Scan(&itemID, &f.Path, &f.Filename, &f.SizeBytes,
			&typeID, &f.Locator, &status, &f.IsPrimary); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		f.TypeID = typeID.String
		f.Status = domain.FileStatus(status)
		out[itemID] = append(out[itemID], f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachments: %w", err)
	}
	return out, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanMetaItem scans a metaColumns row.
func scanMetaItem(sc scanner) (domain.Item, error) {
	var it domain.Item
	var kind string
	var ts sql.NullTime
	var sourceApp, sourceBundle sql.NullString
	var color sql.NullInt64
	var linkState, linkTitle, linkDesc, linkImage sql.NullString

	err := sc.Scan(&it.ID, &kind, &it.Content, &it.ContentHash, &ts,
		&sourceApp, &sourceBundle, &color,
		&linkState, &linkTitle, &linkDesc, &linkImage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, err
		}
		return domain.Item{}, fmt.Errorf("scanning item: %w", err)
	}

	assembleItem(&it, kind, ts, sourceApp, sourceBundle, color,
		linkState, linkTitle, linkDesc, linkImage)
	if it.Kind == domain.KindImage {
		it.Image = &domain.ImageContent{Description: it.Content}
	}
	return it, nil
}

// scanFullItem scans a fullColumns row.
func scanFullItem(sc scanner) (domain.Item, error) {
	var it domain.Item
	var kind string
	var ts sql.NullTime
	var sourceApp, sourceBundle sql.NullString
	var color sql.NullInt64
	var linkState, linkTitle, linkDesc, linkImage sql.NullString
	var imageData []byte

	err := sc.Scan(&it.ID, &kind, &it.Content, &it.ContentHash, &ts,
		&sourceApp, &sourceBundle, &color,
		&linkState, &linkTitle, &linkDesc, &linkImage,
		&imageData, &it.Thumbnail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, err
		}
		return domain.Item{}, fmt.Errorf("scanning item: %w", err)
	}

	assembleItem(&it, kind, ts, sourceApp, sourceBundle, color,
		linkState, linkTitle, linkDesc, linkImage)
	if it.Kind == domain.KindImage {
		it.Image = &domain.ImageContent{Data: imageData, Description: it.Content}
	}
	return it, nil
}

// assembleItem fills the variant fields common to both column sets.
func assembleItem(it *domain.Item, kind string, ts sql.NullTime,
	sourceApp, sourceBundle sql.NullString, color sql.NullInt64,
	linkState, linkTitle, linkDesc, linkImage sql.NullString) {
	it.Kind = domain.ContentKind(kind)
	if ts.Valid {
		it.Timestamp = ts.Time
	}
	it.SourceApp = sourceApp.String
	it.SourceBundleID = sourceBundle.String
	if color.Valid {
		it.Color = domain.ColorRGBA(color.Int64)
	}
	if it.Kind == domain.KindLink {
		state := domain.LinkState(linkState.String)
		if !state.IsValid() {
			state = domain.LinkStatePending
		}
		it.Link = &domain.LinkMetadata{
			State:       state,
			Title:       linkTitle.String,
			Description: linkDesc.String,
			ImageURL:    linkImage.String,
		}
	}
}

// scanCandidates drains a (id, index_text, timestamp) result set.
func scanCandidates(rows *sql.Rows, limit int) ([]domain.SearchCandidate, error) {
	var out []domain.SearchCandidate
	for rows.Next() {
		var c domain.SearchCandidate
		var ts sql.NullTime
		if err := rows.Scan(&c.ID, &c.Content, &ts); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		c.Timestamp = ts.Time
		out = append(out, c)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}
	return out, nil
}

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// probeLimit maps a non-positive limit to SQLite's "no limit". Page
// queries pass limit+1 to detect a further page.
func probeLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// escapeLike escapes LIKE wildcards in user input so the search
// queries, which declare ESCAPE '\', match them literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
