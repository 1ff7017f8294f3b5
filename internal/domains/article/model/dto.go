package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type CreateArticleRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Status   string   `json:"status"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"imageURL"`
}

func (r CreateArticleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Status, validation.Required, validation.In(StatusDraft, StatusPublished)),
		validation.Field(&r.Category, validation.Length(0, 50)),
		validation.Field(&r.Tags, validation.Length(0, 10)),
	)
}

type UpdateArticleRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Status   *string   `json:"status"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
	ImageURL *string   `json:"imageURL"`
}

func (r UpdateArticleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.NilOrNotEmpty),
		validation.Field(&r.Status, validation.When(r.Status != nil, validation.In(StatusDraft, StatusPublished))),
	)
}

type CreateCommentRequest struct {
	Body string `json:"body"`
}

func (r CreateCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Body, validation.Required, validation.Length(1, 2000)),
	)
}

type SearchRequest struct {
	Text     string   `json:"text"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// ArticleDTO is the outward article shape.
type ArticleDTO struct {
	ID            string   `json:"id"`
	AuthorID      string   `json:"authorId"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Status        string   `json:"status"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	ImageURL      string   `json:"imageURL,omitempty"`
	LikesCount    int      `json:"likesCount"`
	CommentsCount int      `json:"commentsCount"`
	CreatedAt     int64    `json:"createdAt"`
	UpdatedAt     int64    `json:"updatedAt"`
}

func (a *Article) ToDTO() ArticleDTO {
	return ArticleDTO{
		ID:            a.ID,
		AuthorID:      a.AuthorID,
		Title:         a.Title,
		Content:       a.Content,
		Status:        a.Status,
		Category:      a.Category,
		Tags:          a.Tags,
		ImageURL:      a.ImageURL,
		LikesCount:    a.LikesCount,
		CommentsCount: a.CommentsCount,
		CreatedAt:     a.EffectiveCreatedAt().UnixMilli(),
		UpdatedAt:     a.UpdatedAt.UnixMilli(),
	}
}

type CommentDTO struct {
	ID        string `json:"id"`
	ArticleID string `json:"articleId"`
	AuthorID  string `json:"authorId"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"createdAt"`
}

func (c *Comment) ToDTO() CommentDTO {
	return CommentDTO{
		ID:        c.ID,
		ArticleID: c.ArticleID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.EffectiveCreatedAt().UnixMilli(),
	}
}
