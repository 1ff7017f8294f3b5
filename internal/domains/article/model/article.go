package model

import "time"

// Document collections.
const (
	Collection         = "articles"
	CommentsCollection = "comments"
	LikesCollection    = "likes"
)

// Publishing states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Counter field names, adjusted only through increments.
const (
	FieldLikesCount    = "likesCount"
	FieldCommentsCount = "commentsCount"
)

// Article is a stored blog post. The id lives outside the document
// payload and is filled in from the row key.
type Article struct {
	ID            string    `json:"-"`
	AuthorID      string    `json:"authorId"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Status        string    `json:"status"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags"`
	ImageURL      string    `json:"imageURL,omitempty"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EffectiveCreatedAt is the ordering key used everywhere articles are
// sorted: the stored timestamp when present, the epoch otherwise, so
// a record whose server timestamp is still pending sorts last instead
// of unpredictably.
func (a *Article) EffectiveCreatedAt() time.Time {
	if a.CreatedAt.IsZero() {
		return time.Unix(0, 0)
	}
	return a.CreatedAt
}

// Comment belongs to an article; creating or deleting one moves the
// article's commentsCount by one.
type Comment struct {
	ID        string    `json:"-"`
	ArticleID string    `json:"articleId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Comment) EffectiveCreatedAt() time.Time {
	if c.CreatedAt.IsZero() {
		return time.Unix(0, 0)
	}
	return c.CreatedAt
}

// Like is keyed by userId_articleId, at most one per pair.
type Like struct {
	ID        string    `json:"-"`
	UserID    string    `json:"userId"`
	ArticleID string    `json:"articleId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeID builds the composite row key enforcing the one-per-pair
// invariant.
func LikeID(userID, articleID string) string {
	return userID + "_" + articleID
}
