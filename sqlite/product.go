package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/shopscrape"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var (
	_ shopscrape.Store       = (*ProductStore)(nil)
	_ shopscrape.EntryFinder = (*ProductStore)(nil)
)

// ProductStore keeps one row per canonical product URL.
type ProductStore struct {
	db *DB

	// Now returns the write time. Nil means time.Now.
	Now func() time.Time
}

// NewProductStore creates a new ProductStore.
func NewProductStore(db *DB) *ProductStore {
	return &ProductStore{db: db}
}

// Upsert writes the batch in one transaction. Existing rows keep their id
// and first-seen time; changed_at moves only when the content hash changes.
func (s *ProductStore) Upsert(ctx context.Context, entries []*shopscrape.Entry) (*shopscrape.UpsertStats, error) {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := formatTime(s.now())
	stats := &shopscrape.UpsertStats{}
	for _, e := range entries {
		link := shopscrape.CanonicalURL(e.Product.Link)
		hash, err := hashProduct(e.Product)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", link, err)
		}

		var id, oldHash string
		err = tx.QueryRowContext(ctx, `SELECT id, content_hash FROM products WHERE link = ?`, link).Scan(&id, &oldHash)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			stats.New++
			_, err = tx.ExecContext(ctx, `
				INSERT INTO products (id, link, title, price, details_text, seller_score, category,
					source, search_query, page_number, content_hash, first_seen_at, changed_at, scraped_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, uuid.New().String(), link, value(e.Product.Title), value(e.Product.Price), value(e.Product.DetailsText),
				value(e.Product.SellerScore), value(e.Product.Category), e.Metadata.Source, e.Metadata.SearchQuery,
				e.Metadata.PageNumber, hash, now, now, now)
		case err != nil:
			return nil, err
		default:
			stats.Updated++
			_, err = tx.ExecContext(ctx, `
				UPDATE products
				SET title = ?, price = ?, details_text = ?, seller_score = ?, category = ?,
					source = ?, search_query = ?, page_number = ?, content_hash = ?,
					changed_at = CASE WHEN content_hash = ? THEN changed_at ELSE ? END,
					scraped_at = ?
				WHERE id = ?
			`, value(e.Product.Title), value(e.Product.Price), value(e.Product.DetailsText), value(e.Product.SellerScore),
				value(e.Product.Category), e.Metadata.Source, e.Metadata.SearchQuery, e.Metadata.PageNumber,
				hash, hash, now, now, id)
		}
		if err != nil {
			return nil, fmt.Errorf("upsert %s: %w", link, err)
		}
	}

	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&stats.Total); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stats, nil
}

// FindEntries retrieves entries matching the filter, ordered by link.
func (s *ProductStore) FindEntries(ctx context.Context, filter shopscrape.EntryFilter) ([]*shopscrape.Entry, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT link, title, price, details_text, seller_score, category,
		source, search_query, page_number, scraped_at FROM products WHERE 1=1`)
	if filter.Query != nil {
		query.WriteString(" AND search_query = ?")
		args = append(args, *filter.Query)
	}
	query.WriteString(" ORDER BY link ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*shopscrape.Entry
	for rows.Next() {
		var (
			rec                      shopscrape.ProductRecord
			meta                     shopscrape.Metadata
			title, details, category sql.NullString
			price, score             sql.NullFloat64
			scrapedAt                string
		)
		if err := rows.Scan(&rec.Link, &title, &price, &details, &score, &category,
			&meta.Source, &meta.SearchQuery, &meta.PageNumber, &scrapedAt); err != nil {
			return nil, err
		}
		if meta.ScrapedAt, err = parseRFC3339(scrapedAt, "scraped_at"); err != nil {
			return nil, err
		}
		rec.Title, rec.DetailsText, rec.Category = nullString(title), nullString(details), nullString(category)
		rec.Price, rec.SellerScore = nullFloat(price), nullFloat(score)
		entries = append(entries, &shopscrape.Entry{Metadata: meta, Product: &rec})
	}
	return entries, rows.Err()
}

// ChangedAt returns when the stored content of link last changed.
// Returns ENOTFOUND if no row exists.
func (s *ProductStore) ChangedAt(ctx context.Context, link string) (time.Time, error) {
	var changedAt string
	err := s.db.QueryRowContext(ctx, `SELECT changed_at FROM products WHERE link = ?`,
		shopscrape.CanonicalURL(link)).Scan(&changedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, shopscrape.Errorf(shopscrape.ENOTFOUND, "product not found")
	}
	if err != nil {
		return time.Time{}, err
	}
	return parseRFC3339(changedAt, "changed_at")
}

func (s *ProductStore) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
