package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/hexarch/items-api/internal/config"
	"github.com/hexarch/items-api/internal/handler"
	"github.com/hexarch/items-api/internal/repository"
	"github.com/hexarch/items-api/internal/service"
	"github.com/hexarch/items-api/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

func New(cfg *config.Config, db *gorm.DB) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = handler.ErrorHandler

	// /items/ and /items/search/ resolve to the slashless routes.
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	itemRepo := repository.NewItemRepository(db)
	itemSvc := service.NewItemService(itemRepo)
	itemHandler := handler.NewItemHandler(itemSvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":  "true",
			"app": cfg.AppName,
			"env": cfg.AppEnv,
		})
	})

	api := e.Group("/api")
	items := api.Group("/items")
	items.GET("", itemHandler.List)
	items.POST("", itemHandler.Create)
	items.GET("/search", itemHandler.Search)
	items.GET("/:id", itemHandler.Get)
	items.PATCH("/:id", itemHandler.Update)
	items.DELETE("/:id", itemHandler.Delete)
	items.POST("/:id/discount", itemHandler.Discount)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Echo exposes the underlying router for httptest-driven tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}
