package database

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gocql/gocql"
	"github.com/rs/zerolog"
)

type ScyllaKeyspaceConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	CACertPath  string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

// ScyllaManager garde une session par keyspace et la recrée si elle ne répond plus
type ScyllaManager struct {
	mu       sync.Mutex
	sessions map[string]*gocql.Session
	configs  map[string]ScyllaKeyspaceConfig
	log      zerolog.Logger
}

func NewScyllaManager(log zerolog.Logger, configs ...ScyllaKeyspaceConfig) *ScyllaManager {
	sm := &ScyllaManager{
		sessions: make(map[string]*gocql.Session),
		configs:  make(map[string]ScyllaKeyspaceConfig),
		log:      log,
	}
	for _, cfg := range configs {
		if cfg.NumConns == 0 {
			cfg.NumConns = 20
		}
		if cfg.Timeout == 0 {
			cfg.Timeout = 5 * time.Second
		}
		if cfg.Consistency == 0 {
			cfg.Consistency = gocql.Quorum
		}
		sm.configs[cfg.Keyspace] = cfg
	}
	return sm
}

func createScyllaCluster(cfg ScyllaKeyspaceConfig) (*gocql.ClusterConfig, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = cfg.Consistency
	cluster.Timeout = cfg.Timeout
	cluster.NumConns = cfg.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = time.Second
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("lecture certificat CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("certificat CA invalide: %s", cfg.CACertPath)
		}
		cluster.SslOpts = &gocql.SslOptions{Config: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}}
	}

	return cluster, nil
}

// Session retourne la session du keyspace, en la créant au premier appel
func (sm *ScyllaManager) Session(keyspace string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cfg, ok := sm.configs[keyspace]
	if !ok {
		return nil, fmt.Errorf("keyspace '%s' non configuré", keyspace)
	}

	if session, ok := sm.sessions[keyspace]; ok {
		if !session.Closed() {
			return session, nil
		}
		delete(sm.sessions, keyspace)
	}

	cluster, err := createScyllaCluster(cfg)
	if err != nil {
		return nil, fmt.Errorf("configuration cluster %s: %w", keyspace, err)
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", keyspace, err)
	}

	sm.sessions[keyspace] = session
	sm.log.Info().Str("keyspace", keyspace).Msg("✅ Nouvelle session ScyllaDB")
	return session, nil
}

func (sm *ScyllaManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for keyspace, session := range sm.sessions {
		session.Close()
		sm.log.Info().Str("keyspace", keyspace).Msg("🔌 Session ScyllaDB fermée")
	}
	sm.sessions = make(map[string]*gocql.Session)
}
