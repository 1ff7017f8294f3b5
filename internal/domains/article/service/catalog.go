package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"blog-backend/internal/domains/article/model"
	"blog-backend/internal/domains/article/repository"
	"blog-backend/internal/infrastructure/docstore"
	"blog-backend/pkg/logger"
)

// Page is one listing page. NextCursor resumes the underlying scan;
// it is nil when the page came from the degraded full-scan path or
// when the scan is exhausted.
type Page struct {
	Items      []*model.Article
	NextCursor *docstore.Cursor
	HasMore    bool
}

// CatalogService lists, feeds and searches published articles. The
// backend query does not order filtered results, so every listing
// sorts client-side by creation time descending; cursors however
// belong to the backend scan and are captured before that sort.
type CatalogService struct {
	repo repository.ArticleRepository
}

func NewCatalogService(repo repository.ArticleRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// ListPublished pages through published articles. HasMore is true iff
// the page came back full; a full last page reports one spurious
// "more" and the follow-up call returns empty, which callers accept
// in exchange for skipping an existence probe.
func (s *CatalogService) ListPublished(ctx context.Context, pageSize int, cursor *docstore.Cursor) (*Page, error) {
	rows, err := s.repo.QueryPublished(ctx, pageSize, cursor)
	if err != nil {
		logger.Warn("published query failed, falling back to full scan", map[string]interface{}{
			"error": err.Error(),
		})
		return s.listPublishedFallback(ctx, pageSize, cursor)
	}

	// The cursor names the last row in scan order, so capture it
	// before the display sort rearranges the slice.
	var next *docstore.Cursor
	if len(rows) > 0 {
		next = &docstore.Cursor{LastID: rows[len(rows)-1].ID}
	}

	sortByCreatedDesc(rows)

	return &Page{
		Items:      rows,
		NextCursor: next,
		HasMore:    len(rows) == pageSize,
	}, nil
}

// listPublishedFallback serves listings when the indexed query is
// unavailable: scan everything, filter and sort here, and locate the
// cursor position by searching the sorted list for the row it names.
// Cursor continuity with the primary path is not preserved; the
// returned page carries no cursor.
func (s *CatalogService) listPublishedFallback(ctx context.Context, pageSize int, cursor *docstore.Cursor) (*Page, error) {
	all, err := s.repo.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}

	published := make([]*model.Article, 0, len(all))
	for _, art := range all {
		if art.Status == model.StatusPublished {
			published = append(published, art)
		}
	}
	sortByCreatedDesc(published)

	start := 0
	if cursor != nil {
		for i, art := range published {
			if art.ID == cursor.LastID {
				start = i + 1
				break
			}
		}
	}
	end := start + pageSize
	if end > len(published) {
		end = len(published)
	}
	if start > len(published) {
		start = len(published)
	}

	return &Page{
		Items:      published[start:end],
		NextCursor: nil,
		HasMore:    end < len(published),
	}, nil
}

// ListForAuthor returns every article by the author, drafts included,
// newest first.
func (s *CatalogService) ListForAuthor(ctx context.Context, authorID string) ([]*model.Article, error) {
	rows, err := s.repo.QueryByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	sortByCreatedDesc(rows)
	return rows, nil
}

// ListForUserFeed builds the signed-in listing. The first page (nil
// cursor) merges the published page with the caller's own articles,
// deduplicated by id with the published copy winning, then re-sorts
// and truncates. Both fetches degrade independently: a failed
// published fetch leaves an empty page and the author merge still
// runs, and vice versa. Append pages continue the published scan
// alone; the caller's items are not re-merged.
func (s *CatalogService) ListForUserFeed(ctx context.Context, userID string, pageSize int, cursor *docstore.Cursor) (*Page, error) {
	if cursor != nil {
		return s.ListPublished(ctx, pageSize, cursor)
	}

	page, err := s.ListPublished(ctx, pageSize, nil)
	if err != nil {
		logger.Warn("published fetch failed, building feed from author items", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		page = &Page{}
	}

	own, err := s.repo.QueryByAuthor(ctx, userID)
	if err != nil {
		logger.Warn("author fetch failed, serving published page alone", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		own = nil
	}

	seen := make(map[string]bool, len(page.Items))
	merged := make([]*model.Article, 0, len(page.Items)+len(own))
	for _, art := range page.Items {
		seen[art.ID] = true
		merged = append(merged, art)
	}
	for _, art := range own {
		if seen[art.ID] {
			continue
		}
		merged = append(merged, art)
	}

	if len(merged) == 0 {
		// Nothing to show; retry with the published listing alone.
		return s.ListPublished(ctx, pageSize, nil)
	}

	sortByCreatedDesc(merged)
	if len(merged) > pageSize {
		merged = merged[:pageSize]
	}

	return &Page{
		Items:      merged,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}, nil
}

// Search filters published articles by category and tag intersection
// on the backend, then by case-insensitive substring match on title
// or content here. Empty text skips the text filter.
func (s *CatalogService) Search(ctx context.Context, req model.SearchRequest) ([]*model.Article, error) {
	rows, err := s.repo.QueryFiltered(ctx, req.Category, req.Tags)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}

	if text := strings.ToLower(strings.TrimSpace(req.Text)); text != "" {
		matched := rows[:0]
		for _, art := range rows {
			if strings.Contains(strings.ToLower(art.Title), text) ||
				strings.Contains(strings.ToLower(art.Content), text) {
				matched = append(matched, art)
			}
		}
		rows = matched
	}

	sortByCreatedDesc(rows)
	return rows, nil
}

func sortByCreatedDesc(articles []*model.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].EffectiveCreatedAt().After(articles[j].EffectiveCreatedAt())
	})
}
