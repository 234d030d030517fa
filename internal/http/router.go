package http

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// RouterConfig holds all dependencies for creating the HTTP router.
type RouterConfig struct {
	Inventory InventoryService
	Database  Pinger
	Version   string

	// CSRFSecret enables CSRF protection when non-empty.
	CSRFSecret    []byte
	SecureCookies bool
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(SecurityHeadersMiddleware())

	if len(cfg.CSRFSecret) > 0 {
		router.Use(CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	router.SetHTMLTemplate(loadTemplates())

	healthController := NewHealthController(cfg.Database, cfg.Inventory, cfg.Version)
	router.GET("/health", healthController.Status)
	router.GET("/ping", healthController.Ping)

	books := NewBooksController(cfg.Inventory)

	router.GET("/", books.Index)
	router.POST("/books", books.AddForm)
	router.POST("/books/:isbn/rating", books.RateForm)
	router.POST("/books/:isbn/delete", books.DeleteForm)

	api := router.Group("/api")
	{
		api.GET("/books", books.GetAllBooks)
		api.POST("/books", books.AddBook)
		api.POST("/books/refresh", books.RefreshBooks)
		api.PUT("/books/:isbn/rating", books.RateBook)
		api.DELETE("/books/:isbn", books.DeleteBook)
	}

	return router
}

func loadTemplates() *template.Template {
	funcMap := template.FuncMap{
		"stars": func() []int {
			stars := make([]int, MaxRating)
			for i := range stars {
				stars[i] = i + 1
			}
			return stars
		},
	}
	return template.Must(template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html"))
}
