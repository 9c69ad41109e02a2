package main

import (
	"embed"
	"encoding/gob"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/mattsnow/albumshare/cmd/website/internal/albums"
	"github.com/mattsnow/albumshare/cmd/website/internal/authflow"
	"github.com/mattsnow/albumshare/cmd/website/internal/configuration"
	"github.com/mattsnow/albumshare/pkg/identity"
	"github.com/mattsnow/albumshare/pkg/models"
	"github.com/mattsnow/albumshare/pkg/services"
	"github.com/rfberaldo/sqlz"
)

var (
	Version string = "development"
	appName string = "albumshare"

	//go:embed app
	appFS embed.FS

	config configuration.Config

	/* Services */
	albumService    services.AlbumServicer
	db              *sqlz.DB
	identityService identity.IdentityServicer
	likeService     services.LikeServicer
	profileService  services.ProfileServicer
	renderer        rendering.TemplateRenderer
	sessionService  sessions.Session[*models.Profile]

	/* Controllers */
	albumController albums.AlbumController
	authController  authflow.AuthController
)

func main() {
	var (
		err error
	)

	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
	)

	slog.Debug("setting up...")

	/*
	 * Setup services
	 */
	if db, err = services.ConnectDatabase(config.DSN); err != nil {
		panic(err)
	}

	if err = services.MigrateDatabase(db); err != nil {
		panic(err)
	}

	gob.Register(&models.Profile{})

	cookieStore := sessions.NewCookieStore(config.CookieSecret)
	sessionService = sessions.NewSessionWrapper[*models.Profile](cookieStore, "albumshareusers", "profile")

	if renderer, err = rendering.NewGoTemplateRenderer(rendering.GoTemplateRendererConfig{
		TemplateDir:       "app",
		TemplateExtension: ".html",
		TemplateFS:        appFS,
		PagesDir:          "pages",
	}); err != nil {
		panic(err)
	}

	albumService = services.NewAlbumService(services.AlbumServiceConfig{
		DB: db,
	})

	likeService = services.NewLikeService(services.LikeServiceConfig{
		DB: db,
	})

	profileService = services.NewProfileService(services.ProfileServiceConfig{
		DB: db,
	})

	identityService = identity.NewGoogleIdentityService(identity.GoogleIdentityServiceConfig{
		ClientID:     config.GoogleClientID,
		ClientSecret: config.GoogleClientSecret,
		RedirectURL:  config.GoogleRedirectURL,
	})

	/*
	 * Setup controllers
	 */
	albumController = albums.NewAlbumController(albums.AlbumControllerConfig{
		AlbumService:   albumService,
		CoverHosts:     splitCoverHosts(config.CoverImageHosts),
		LikeService:    likeService,
		Renderer:       renderer,
		SessionService: sessionService,
	})

	authController = authflow.NewAuthController(authflow.AuthControllerConfig{
		IdentityService: identityService,
		ProfileService:  profileService,
		Renderer:        renderer,
		SessionService:  sessionService,
	})

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	requireProfileMiddleware := newRequireProfileMiddleware(sessionService)

	routes := []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /", HandlerFunc: rootRedirect},
		{Path: "GET /albums", HandlerFunc: albumController.ListingPage},
		{Path: "POST /albums/{albumid}/like", HandlerFunc: albumController.LikeAction, Middlewares: []mux.MiddlewareFunc{requireProfileMiddleware}},
		{Path: "POST /albums/{albumid}/unlike", HandlerFunc: albumController.UnlikeAction, Middlewares: []mux.MiddlewareFunc{requireProfileMiddleware}},
		{Path: "GET /login", HandlerFunc: authController.LoginPage},
		{Path: "GET /auth/login", HandlerFunc: authController.LoginAction},
		{Path: "GET /auth/callback", HandlerFunc: authController.CallbackAction},
		{Path: "POST /auth/signout", HandlerFunc: authController.SignoutAction},
	}

	routerConfig := mux.RouterConfig{
		Address:              config.Host,
		Debug:                Version == "development",
		ServeStaticContent:   true,
		StaticContentRootDir: "app",
		StaticContentPrefix:  "/static/",
		StaticFS:             appFS,
		HttpWriteTimeout:     60,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	mux.Shutdown(httpServer)
	slog.Info("server stopped")
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}

func rootRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/albums", http.StatusFound)
}

func splitCoverHosts(value string) []string {
	result := []string{}

	for _, host := range strings.Split(value, ",") {
		if host = strings.TrimSpace(host); host != "" {
			result = append(result, host)
		}
	}

	return result
}
