package database

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenPostgres ouvre la base relationnelle (users, produits, paniers, commandes)
func OpenPostgres(ctx context.Context, dsn string, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connexion Postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping Postgres: %w", err)
	}

	log.Info().Msg("✅ Connecté à Postgres")
	return db, nil
}

func ClosePostgres(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ConnectRedis retourne nil si REDIS_HOST est vide : les fonctions Redis passent alors en mémoire
func ConnectRedis(ctx context.Context, addr, password string, log zerolog.Logger) (*redis.Client, error) {
	if addr == "" {
		log.Warn().Msg("⚠️ REDIS_HOST vide, cache et Pub/Sub panier en mémoire")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connexion Redis: %w", err)
	}

	log.Info().Str("addr", addr).Msg("✅ Connecté à Redis")
	return client, nil
}

// ConnectElastic retourne nil si ELASTIC_URL est vide : la recherche passe alors par la base
func ConnectElastic(url, user, password string, log zerolog.Logger) (*elasticsearch.Client, error) {
	if url == "" {
		log.Warn().Msg("⚠️ ELASTIC_URL vide, recherche produits via la base")
		return nil, nil
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("client Elasticsearch: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("connexion Elasticsearch: %s", res.Status())
	}

	log.Info().Str("url", url).Msg("✅ Connecté à Elasticsearch")
	return client, nil
}
