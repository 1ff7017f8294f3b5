package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-backend/internal/domains/article/model"
	"blog-backend/internal/domains/article/service"
	"blog-backend/internal/infrastructure/docstore"
	"blog-backend/internal/infrastructure/storage"
	"blog-backend/internal/shared/middleware"
	"blog-backend/internal/shared/response"
)

// ArticleHandler exposes the article, comment, like and image
// endpoints.
type ArticleHandler struct {
	articles        *service.ArticleService
	catalog         *service.CatalogService
	engagement      *service.EngagementService
	images          *service.ImageService
	defaultPageSize int
}

func NewArticleHandler(
	articles *service.ArticleService,
	catalog *service.CatalogService,
	engagement *service.EngagementService,
	images *service.ImageService,
	defaultPageSize int,
) *ArticleHandler {
	return &ArticleHandler{
		articles:        articles,
		catalog:         catalog,
		engagement:      engagement,
		images:          images,
		defaultPageSize: defaultPageSize,
	}
}

func (h *ArticleHandler) pageParams(c *gin.Context) (int, *docstore.Cursor) {
	pageSize := h.defaultPageSize
	if raw := c.Query("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}
	var cursor *docstore.Cursor
	if last := c.Query("cursor"); last != "" {
		cursor = &docstore.Cursor{LastID: last}
	}
	return pageSize, cursor
}

func (h *ArticleHandler) writePage(c *gin.Context, page *service.Page, pageSize int) {
	items := make([]model.ArticleDTO, 0, len(page.Items))
	for _, art := range page.Items {
		items = append(items, art.ToDTO())
	}
	meta := &response.Meta{
		PageSize: pageSize,
		HasMore:  page.HasMore,
	}
	if page.NextCursor != nil {
		meta.NextCursor = page.NextCursor.LastID
	}
	response.SuccessWithMeta(c, http.StatusOK, gin.H{"articles": items}, meta)
}

// List serves the public published listing.
func (h *ArticleHandler) List(c *gin.Context) {
	pageSize, cursor := h.pageParams(c)
	page, err := h.catalog.ListPublished(c.Request.Context(), pageSize, cursor)
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	h.writePage(c, page, pageSize)
}

// Feed serves the signed-in listing with the caller's own articles
// merged into the first page.
func (h *ArticleHandler) Feed(c *gin.Context) {
	pageSize, cursor := h.pageParams(c)
	userID := c.GetString(middleware.CtxUserID)

	page, err := h.catalog.ListForUserFeed(c.Request.Context(), userID, pageSize, cursor)
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	h.writePage(c, page, pageSize)
}

// Mine lists the caller's own articles, drafts included.
func (h *ArticleHandler) Mine(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	arts, err := h.catalog.ListForAuthor(c.Request.Context(), userID)
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	items := make([]model.ArticleDTO, 0, len(arts))
	for _, art := range arts {
		items = append(items, art.ToDTO())
	}
	response.Success(c, http.StatusOK, gin.H{"articles": items})
}

func (h *ArticleHandler) Search(c *gin.Context) {
	req := model.SearchRequest{
		Text:     c.Query("text"),
		Category: c.Query("category"),
	}
	if raw := c.Query("tags"); raw != "" {
		req.Tags = strings.Split(raw, ",")
	}

	arts, err := h.catalog.Search(c.Request.Context(), req)
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	items := make([]model.ArticleDTO, 0, len(arts))
	for _, art := range arts {
		items = append(items, art.ToDTO())
	}
	response.Success(c, http.StatusOK, gin.H{"articles": items})
}

func (h *ArticleHandler) Get(c *gin.Context) {
	art, err := h.articles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, art.ToDTO())
}

func (h *ArticleHandler) Create(c *gin.Context) {
	var req model.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", err)
		return
	}

	userID := c.GetString(middleware.CtxUserID)
	art, err := h.articles.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, art.ToDTO())
}

func (h *ArticleHandler) Update(c *gin.Context) {
	var req model.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", err)
		return
	}

	userID := c.GetString(middleware.CtxUserID)
	art, err := h.articles.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, art.ToDTO())
}

func (h *ArticleHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	if err := h.articles.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeArticleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *ArticleHandler) ListComments(c *gin.Context) {
	comments, err := h.engagement.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	items := make([]model.CommentDTO, 0, len(comments))
	for _, cm := range comments {
		items = append(items, cm.ToDTO())
	}
	response.Success(c, http.StatusOK, gin.H{"comments": items})
}

func (h *ArticleHandler) AddComment(c *gin.Context) {
	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", err)
		return
	}

	userID := c.GetString(middleware.CtxUserID)
	comment, err := h.engagement.AddComment(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, comment.ToDTO())
}

func (h *ArticleHandler) DeleteComment(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	err := h.engagement.DeleteComment(c.Request.Context(), userID, c.Param("id"), c.Param("commentId"))
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *ArticleHandler) ToggleLike(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	liked, err := h.engagement.ToggleLike(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"liked": liked})
}

func (h *ArticleHandler) LikedArticles(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	ids, err := h.engagement.LikedArticleIDs(c.Request.Context(), userID)
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"articleIds": ids})
}

// UploadImage accepts a multipart image for the article.
func (h *ArticleHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.BadRequest(c, "missing image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, "could not read image file")
		return
	}

	userID := c.GetString(middleware.CtxUserID)
	url, err := h.images.Upload(c.Request.Context(), userID, c.Param("id"), data, header.Header.Get("Content-Type"))
	if err != nil {
		h.writeArticleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"imageURL": url})
}

func (h *ArticleHandler) writeArticleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrArticleNotFound):
		response.NotFound(c, "article not found")
	case errors.Is(err, model.ErrCommentNotFound):
		response.NotFound(c, "comment not found")
	case errors.Is(err, model.ErrNotOwner):
		response.Forbidden(c, "you do not own this article")
	case errors.Is(err, storage.ErrImageTooLarge), errors.Is(err, storage.ErrInvalidImage):
		response.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, model.ErrBackendUnavailable):
		response.ErrorResponse(c, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE",
			"the article backend is temporarily unavailable")
	default:
		response.InternalError(c, "something went wrong, please try again")
	}
}
