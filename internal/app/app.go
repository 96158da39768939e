package app

import (
	"log/slog"

	httpapp "tutelo/internal/app/http"
	"tutelo/internal/config"
	"tutelo/internal/lib/imageurl"
	"tutelo/internal/repository"
	adminservice "tutelo/internal/services/admin_service"
	catalogservice "tutelo/internal/services/catalog_service"
	"tutelo/internal/storage/credstore"
	httprouters "tutelo/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
}

func New(log *slog.Logger, cfg *config.Config) *App {
	store, err := credstore.New(cfg.Admin.CredentialsFile)
	if err != nil {
		panic(err)
	}

	repo := repository.NewHotelRepository(cfg.Upstream.BaseURL, store)
	composer := imageurl.NewComposer(cfg.Upstream.BaseURL, cfg.Upstream.MediaOrigin)

	catalog := catalogservice.NewCatalogService(log, repo, composer, cfg.Catalog.PageSize, cfg.Catalog.HydrateConcurrency)
	admin := adminservice.NewAdminService(log, repo, catalog)

	routers := httprouters.NewRouter(log, catalog, admin, store)

	server := httpapp.New(log, cfg.HTTP.Host, cfg.HTTP.Port, routers)

	return &App{
		HTTPServer: server,
	}
}
