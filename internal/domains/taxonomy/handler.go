package taxonomy

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-backend/internal/shared/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.InternalError(c, "could not load categories")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		response.InternalError(c, "could not load tags")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tags": tags})
}
