package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/mercastore/product-catalog/config"
	"github.com/mercastore/product-catalog/internal/controller"
	"github.com/mercastore/product-catalog/internal/infrastructure/database/mongodb"
	"github.com/mercastore/product-catalog/internal/infrastructure/storage"
	"github.com/mercastore/product-catalog/internal/infrastructure/tracing"
	"github.com/mercastore/product-catalog/internal/middleware"
	"github.com/mercastore/product-catalog/internal/repository"
	"github.com/mercastore/product-catalog/internal/service"
	"github.com/mercastore/product-catalog/pkg/response"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stdout}).With().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = logger

	config := config.CreateNewConfig()
	db, err := mongodb.ConnectToMongoDB(
		fmt.Sprintf("mongodb://%s:%s", config.MongoDBConfig.DBHost, config.MongoDBConfig.DBPort),
		config.MongoDBConfig.DBName,
	)
	if err != nil {
		panic(err)
	}

	defer db.Client().Disconnect(context.Background())

	artifactStorage, err := storage.CreateLocalArtifactStorage(config.UploadDir)
	if err != nil {
		panic(err)
	}

	e := echo.New()
	e.Use(middleware.Logger)
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	traceProvider, err := tracing.InitTracing(config.TracingConfig.CollectorHost)
	if err != nil {
		fmt.Println(err)
	}

	defer func() {
		if err := traceProvider.Shutdown(context.Background()); err != nil {
			fmt.Println(err)
		}
	}()

	tracer := traceProvider.Tracer("product-catalog-service")

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), fmt.Sprintf("[%s] %s", c.Request().Method, c.Path()))
			defer span.End()

			req := c.Request()
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	})

	// Used empty string so that metrics are not prefixed with the service name making it easier to aggregate across services
	e.Use(echoprometheus.NewMiddleware(""))

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(fmt.Sprintf(":%s", config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
	}()

	g := e.Group("/api")

	repo := repository.CreateNewMongoDBRepository(db)
	svc := service.CreateProductService(repo, artifactStorage)
	controller.CreateProductController(g, svc)

	e.Static("/uploads", config.UploadDir)

	g.GET("/ping", func(c echo.Context) error {
		return response.WriteMessageResponse(c, "pong")
	})

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%s", config.ServicePort)))
}
