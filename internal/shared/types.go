package shared

// Asynq task type names.
const (
	TypeProcessArticleImage = "article:process_image"
	TypeDeleteArticleImages = "article:delete_images"
)

// Asynq queue names.
const (
	QueueDefault = "default"
	QueueImages  = "images"
)

// ProcessArticleImagePayload asks the worker to generate resized
// variants next to an uploaded original.
type ProcessArticleImagePayload struct {
	ArticleID string `json:"articleId"`
	Key       string `json:"key"`
}

// DeleteArticleImagesPayload asks the worker to remove every stored
// object for a deleted article.
type DeleteArticleImagesPayload struct {
	ArticleID string `json:"articleId"`
	Prefix    string `json:"prefix"`
}
