package mingle

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/mingleapp/mingle/core"
	"github.com/mingleapp/mingle/pkg/router"
)

type App struct {
	config      *Config
	db          *core.SQLiteDB
	context     context.Context
	server      *http.Server
	logger      *slog.Logger
	router      *router.Router
	eventRouter *core.EventRouter
	wsManager   *core.ConnManager

	exit chan int

	userStore      core.UserStore
	authStore      core.AuthStore
	messageStore   core.MessageStore
	messageService *core.MessageService

	userHandler    *UserHandler
	authHandler    *AuthHandler
	messageHandler *MessageHandler

	cleanupFuncs []func(context.Context)

	staticFS *StaticFS

	wg sync.WaitGroup
}

func New(ctx context.Context, config *Config, staticFS *StaticFS) *App {
	var err error
	app := &App{
		exit: make(chan int),
	}
	if ctx == nil {
		ctx, _ = signal.NotifyContext(
			context.Background(),
			syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	}
	app.context = ctx

	if config == nil {
		config = loadConfigChain()
	}
	if err := config.Validate(); err != nil {
		failed(1, FormatValidationErrors(err))
	}
	app.config = config

	app.staticFS = staticFS

	app.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				source, _ := a.Value.Any().(*slog.Source)
				if source != nil {
					source.File = filepath.Base(source.File)
				}
			}
			return a
		},
	}))

	sqliteOptions := &core.SQLiteDBOption{
		Mode:        "rwc",
		Cache:       "shared",
		JournalMode: "WAL",
	}
	app.db, err = core.NewSQLiteDB(app.config.SQLite.File, app.config.SQLite.Migrations, sqliteOptions)
	if err != nil {
		failed(1, "failed to open database: %v\n", err)
	}
	app.AddCleanupFunc(func(ctx context.Context) {
		app.db.Close()
	})
	if err := app.db.Migrate(); err != nil {
		failed(1, "failed to migrate database: %v\n", err)
	}

	uploads, err := NewUploads(app.config.Uploads.Dir)
	if err != nil {
		failed(1, "failed to prepare uploads dir: %v\n", err)
	}

	app.userStore = core.NewSQLiteUserStore(app.db.DB)
	app.authStore = core.NewJWTAuthStore(app.userStore, []byte(app.config.Auth.Secret), 24*time.Hour)
	app.messageStore = core.NewSQLiteMessageStore(app.db.DB)

	app.wsManager = core.NewConnManager(app.context, &app.wg, app.logger)
	app.eventRouter = core.NewEventRouter(app.context, app.logger, app.wsManager)
	app.eventRouter.On(JoinRoomEvent, app.JoinRoomHandler)
	app.messageService = core.NewMessageService(app.messageStore, app.userStore, app.eventRouter, app.logger)

	app.userHandler = NewUserHandler(app.userStore, uploads)
	app.authHandler = NewAuthHandler(app.authStore)
	app.messageHandler = NewMessageHandler(app.messageService)
	authMiddleware := core.JWTMiddleware(app.authStore)

	app.router = router.New(router.WithLogger(app.logger))

	app.router.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	app.router.With(authMiddleware).Get("/ws", func(w http.ResponseWriter, r *http.Request) error {
		if err := app.wsManager.Connect(w, r); err != nil {
			app.logger.Error(fmt.Sprintf("ws connect: %v", err))
		}
		return nil
	})

	api := router.New(router.WithLogger(app.logger))

	api.Route("/users", func(r *router.Router) {
		r.Post("/", app.userHandler.RegisterUserHandler)
		r.Get("/", app.userHandler.SearchUsersHandler)
		r.Get("/{userID}", app.userHandler.GetUserByIDHandler)

		r.Group(func(r *router.Router) {
			r.Use(authMiddleware)
			r.Get("/me", app.userHandler.MeHandler)
			r.Put("/me/bio", app.userHandler.UpdateBioHandler)
			r.Post("/me/photo", app.userHandler.UploadPhotoHandler)
		})
	})

	api.Route("/messages", func(r *router.Router) {
		r.Use(authMiddleware)
		r.Get("/", app.messageHandler.MessageCenterHandler)
		r.Post("/", app.messageHandler.SendMessageHandler)
	})

	api.Route("/auth", func(r *router.Router) {
		r.Post("/signin", app.authHandler.SigninHandler)
		r.With(authMiddleware).Post("/signout", app.authHandler.SignoutHandler)
	})

	app.router.Mount("/api", api)

	app.router.Router.Handle("/uploads/*",
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.config.Uploads.Dir))))

	if app.staticFS != nil {
		app.router.Router.With(staticFS.EtagMiddleware()).Mount("/", http.FileServer(staticFS))
	}

	app.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", app.config.Hostname, app.config.Port),
		Handler: app.router.Router,
		BaseContext: func(listener net.Listener) context.Context {
			return app.context
		},
	}
	if app.config.Mode == ProdMode {
		app.server.TLSConfig = &defaultTLSConfig
	}

	return app
}

// loadConfigChain tries the yaml config file first, then environment
// variables, then the built-in defaults.
func loadConfigChain() *Config {
	config, err := LoadConfig()
	if err == nil {
		return config
	}
	config, err = (&EnvConfigLoader{}).Load()
	if err == nil {
		return config
	}
	config, err = (&DefaultConfigLoader{}).Load()
	if err != nil {
		failed(1, "failed to load config: %v\n", err)
	}
	return config
}

func (app *App) Start() {
	app.eventRouter.Listen()
	app.AddCleanupFunc(func(ctx context.Context) {
		app.eventRouter.Close(ctx)
	})

	// listen for shutdown signal
	go func() {
		<-app.context.Done()
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		var wg sync.WaitGroup

		for _, f := range app.cleanupFuncs {
			wg.Add(1)
			go func(f func(context.Context)) {
				defer wg.Done()
				f(closeCtx)
			}(f)
		}

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			app.logger.Info("app shutdown gracefully")
			app.exit <- 0
		case <-closeCtx.Done():
			app.logger.Info("app shutdown timed out")
			app.exit <- 1
		}
	}()

	app.AddCleanupFunc(func(ctx context.Context) {
		app.server.Shutdown(ctx)
	})
	app.logger.Info(fmt.Sprintf("app running in %s mode on: %s:%d",
		app.config.Mode, app.config.Hostname, app.config.Port))

	var err error
	if app.config.TLS.Key != "" && app.config.TLS.Crt != "" {
		err = app.server.ListenAndServeTLS(app.config.TLS.Crt, app.config.TLS.Key)
	} else {
		err = app.server.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		failed(1, "server error: %v\n", err)
	}

	code := <-app.exit
	os.Exit(code)
}

func (app *App) AddCleanupFunc(f func(context.Context)) {
	app.cleanupFuncs = append(app.cleanupFuncs, f)
}

func failed(code int, s string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, s, args...)
	os.Exit(code)
}
