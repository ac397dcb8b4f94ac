package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers/product"
	"storefront/internal/handlers/user"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/repository/memory"
	"storefront/internal/repository/postgres"
	"storefront/internal/repository/scylla"
	"storefront/internal/routes"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App porte toutes les dépendances du serveur, construites une fois au démarrage
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	Router *gin.Engine

	db     *gorm.DB
	redis  *redis.Client
	scylla *database.ScyllaManager
	orders *user.OrderHandler
}

type repositories struct {
	users    repository.UserRepository
	products repository.ProductRepository
	cart     repository.CartRepository
	orders   repository.OrderRepository
}

// New ouvre les connexions et assemble les handlers. En cas d'erreur, ce qui était ouvert est refermé.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	repos, err := a.openRepositories(ctx)
	if err != nil {
		return nil, err
	}

	store, err := a.openCache(ctx)
	if err != nil {
		return nil, err
	}

	var search product.ProductSearch
	es, err := database.ConnectElastic(cfg.ElasticURL, cfg.ElasticUser, cfg.ElasticPassword, log)
	if err != nil {
		return nil, err
	}
	if es != nil {
		index := services.NewProductIndex(es, cfg.ElasticIndex, log)
		if err := index.EnsureIndex(ctx); err != nil {
			return nil, err
		}
		search = index
	}

	var mailer services.Mailer = services.NewNopMailer(log)
	if cfg.SMTPHost != "" {
		mailer = services.NewSMTPMailer(services.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}, log)
	}

	tokens, err := auth.NewTokenMaker(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	sessions := auth.NewSessionStore(cfg.SessionSecret, cfg.SessionMaxAge, cfg.IsProduction())
	auth.SetupOAuth(auth.OAuthConfig{
		BaseURL:              cfg.BaseURL,
		GoogleClientID:       cfg.GoogleClientID,
		GoogleClientSecret:   cfg.GoogleClientSecret,
		FacebookClientID:     cfg.FacebookClientID,
		FacebookClientSecret: cfg.FacebookClientSecret,
	}, sessions, log)

	blacklist := cache.NewTokenBlacklist(store, log)
	events := cache.NewCartEvents(store)
	products := cache.NewCachedProducts(repos.products, store, log)

	a.orders = user.NewOrderHandler(repos.cart, repos.orders, events, mailer, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	a.Router = gin.New()
	a.Router.Use(middleware.RequestLogger(log))
	routes.RegisterRoutes(a.Router, routes.Deps{
		Auth:       user.NewAuthHandler(repos.users, tokens, blacklist, sessions, cfg.FrontendURL, log),
		Cart:       user.NewCartHandler(repos.cart, products, events, log),
		CartSocket: user.NewCartSocket(repos.cart, events, cfg.AllowedOrigins(), log),
		Orders:     a.orders,
		Products:   product.NewProductHandler(products, search, log),

		Tokens:         tokens,
		Blacklist:      blacklist,
		Sessions:       sessions,
		Limiter:        cache.NewRateLimiter(store),
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	return a, nil
}

func (a *App) openRepositories(ctx context.Context) (repositories, error) {
	var repos repositories

	switch a.Config.StoreDriver {
	case "memory":
		store := memory.NewStore()
		repos = repositories{users: store.Users(), products: store.Products(), cart: store.Cart(), orders: store.Orders()}
		a.Log.Warn().Msg("⚠️ STORE_DRIVER=memory : les données ne survivent pas au redémarrage")
	default:
		if err := database.Migrate(a.Config.DatabaseURL, a.Log); err != nil {
			return repos, err
		}
		db, err := database.OpenPostgres(ctx, a.Config.DatabaseURL, a.Log)
		if err != nil {
			return repos, err
		}
		a.db = db
		pg := postgres.New(db)
		repos = repositories{users: pg.Users, products: pg.Products, cart: pg.Cart, orders: pg.Orders}
	}

	// l'historique des commandes part dans ScyllaDB quand un cluster est configuré
	if hosts := a.Config.ScyllaHostList(); len(hosts) > 0 {
		a.scylla = database.NewScyllaManager(a.Log, database.ScyllaKeyspaceConfig{
			Hosts:    hosts,
			Keyspace: a.Config.ScyllaOrdersKeyspace,
			Username: a.Config.ScyllaUsername,
			Password: a.Config.ScyllaPassword,
			Timeout:  a.Config.ScyllaTimeout,
		})
		session, err := a.scylla.Session(a.Config.ScyllaOrdersKeyspace)
		if err != nil {
			return repos, err
		}
		orders := scylla.NewOrderRepo(session)
		if err := orders.EnsureSchema(ctx); err != nil {
			return repos, err
		}
		repos.orders = orders
		a.Log.Info().Str("keyspace", a.Config.ScyllaOrdersKeyspace).Msg("✅ Commandes stockées dans ScyllaDB")
	}

	return repos, nil
}

func (a *App) openCache(ctx context.Context) (cache.Store, error) {
	client, err := database.ConnectRedis(ctx, a.Config.RedisHost, a.Config.RedisPassword, a.Log)
	if err != nil {
		return nil, err
	}
	if client == nil {
		a.Log.Warn().Msg("⚠️ REDIS_HOST vide : cache, rate limit et Pub/Sub en mémoire")
		return cache.NewMemoryStore(), nil
	}
	a.redis = client
	return cache.NewRedisStore(client), nil
}

// Run sert l'API jusqu'à l'annulation de ctx puis arrête proprement le serveur
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info().Str("port", a.Config.Port).Msg("🚀 Serveur storefront lancé")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serveur HTTP: %w", err)
	case <-ctx.Done():
	}

	a.Log.Info().Msg("🛑 Arrêt du serveur")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("arrêt serveur: %w", err)
	}
	a.orders.Wait()
	return nil
}

// Close ferme les connexions ouvertes par New
func (a *App) Close() {
	if a.scylla != nil {
		a.scylla.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn().Err(err).Msg("⚠️ Fermeture Redis")
		}
	}
	if a.db != nil {
		if err := database.ClosePostgres(a.db); err != nil {
			a.Log.Warn().Err(err).Msg("⚠️ Fermeture PostgreSQL")
		}
	}
}
