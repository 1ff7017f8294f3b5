package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-backend/internal/shared/middleware"
	"blog-backend/pkg/container"
)

func newRouter(c *container.Container) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())

	r.GET("/health", func(ctx *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		ctx.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	})

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", c.AccountHandler.SignUp)
		auth.POST("/signin", c.AccountHandler.SignIn)
		auth.POST("/signin/google", c.AccountHandler.SignInWithGoogle)
		auth.POST("/signin/github", c.AccountHandler.SignInWithGithub)
		auth.POST("/password-reset", c.AccountHandler.SendPasswordReset)
	}

	session := v1.Group("/auth", middleware.SessionAuth(c.Config.Identity.SessionSecret))
	{
		session.POST("/signout", c.AccountHandler.SignOut)
		session.POST("/verification/check", c.AccountHandler.CheckVerification)
		session.POST("/verification/send", c.AccountHandler.SendVerificationEmail)
	}

	profile := v1.Group("/profile", middleware.SessionAuth(c.Config.Identity.SessionSecret))
	{
		profile.GET("", c.AccountHandler.GetProfile)
		profile.PATCH("", c.AccountHandler.UpdateProfile)
	}

	articles := v1.Group("/articles")
	{
		articles.GET("", c.ArticleHandler.List)
		articles.GET("/search", c.ArticleHandler.Search)
		articles.GET("/:id", c.ArticleHandler.Get)
		articles.GET("/:id/comments", c.ArticleHandler.ListComments)
	}

	authedArticles := v1.Group("/articles", middleware.SessionAuth(c.Config.Identity.SessionSecret))
	{
		authedArticles.GET("/feed", c.ArticleHandler.Feed)
		authedArticles.GET("/mine", c.ArticleHandler.Mine)
		authedArticles.POST("", c.ArticleHandler.Create)
		authedArticles.PATCH("/:id", c.ArticleHandler.Update)
		authedArticles.DELETE("/:id", c.ArticleHandler.Delete)
		authedArticles.POST("/:id/comments", c.ArticleHandler.AddComment)
		authedArticles.DELETE("/:id/comments/:commentId", c.ArticleHandler.DeleteComment)
		authedArticles.POST("/:id/like", c.ArticleHandler.ToggleLike)
		authedArticles.POST("/:id/image", c.ArticleHandler.UploadImage)
	}

	likes := v1.Group("/likes", middleware.SessionAuth(c.Config.Identity.SessionSecret))
	{
		likes.GET("", c.ArticleHandler.LikedArticles)
	}

	taxonomy := v1.Group("/taxonomy")
	{
		taxonomy.GET("/categories", c.TaxonomyHandler.ListCategories)
		taxonomy.GET("/tags", c.TaxonomyHandler.ListTags)
	}

	return r
}
