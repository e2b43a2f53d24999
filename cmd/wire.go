package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	gatewayadapter "github.com/suitetecsa/suitetecsa-cli/internal/adapters/portal/gateway"
	statusadapter "github.com/suitetecsa/suitetecsa-cli/internal/adapters/render/status"
	redisrepo "github.com/suitetecsa/suitetecsa-cli/internal/adapters/repo/redis"
	tomlrepo "github.com/suitetecsa/suitetecsa-cli/internal/adapters/repo/toml"
	chainstore "github.com/suitetecsa/suitetecsa-cli/internal/adapters/secrets/chain"
	filestore "github.com/suitetecsa/suitetecsa-cli/internal/adapters/secrets/file"
	"github.com/suitetecsa/suitetecsa-cli/internal/application"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
	"github.com/suitetecsa/suitetecsa-cli/internal/ports"
)

const (
	configDirName  = ".suitetecsa"
	configFileName = "config.toml"
	envPrefix      = "SUITETECSA"

	accountUsernameKey = "account.username"
	sessionsBackendKey = "sessions.backend"
	secretsBackendKey  = "secrets.backend"
	redisAddrKey       = "redis.addr"
	redisDBKey         = "redis.db"
	redisPrefixKey     = "redis.prefix"
	redisTTLKey        = "redis.ttl"

	defaultUserPortalURL = "http://127.0.0.1:8765"
	defaultNautaURL      = "http://127.0.0.1:8765"
)

var errNoAccount = errors.New("no account configured; run 'suitetecsa account set USERNAME' or pass --user")

type app struct {
	config         *viper.Viper
	configPath     string
	sessions       ports.SessionStore
	credentials    ports.CredentialStore
	userPortal     ports.UserPortal
	nauta          ports.Nauta
	statusRenderer func([]application.AccountStatus, statusadapter.RenderOptions) (string, error)
	logger         *zerolog.Logger
	now            func() time.Time
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, configDirName, configFileName)
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	sessions, err := wireSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	credentials, err := wireCredentialStore(cfg, filepath.Join(homeDir, configDirName, "secrets"))
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: time.Minute}
	nop := zerolog.Nop()

	return &app{
		config:      cfg,
		configPath:  configPath,
		sessions:    sessions,
		credentials: credentials,
		userPortal: gatewayadapter.NewUserPortal(gatewayadapter.Client{
			BaseURL:    envOrDefault("SUITETECSA_USER_PORTAL_URL", defaultUserPortalURL),
			HTTPClient: httpClient,
		}),
		nauta: gatewayadapter.NewNauta(gatewayadapter.Client{
			BaseURL:    envOrDefault("SUITETECSA_NAUTA_URL", defaultNautaURL),
			HTTPClient: httpClient,
		}),
		statusRenderer: statusadapter.Render,
		logger:         &nop,
		now:            time.Now,
	}, nil
}

func loadConfig(configPath string) (*viper.Viper, error) {
	cfg := viper.New()
	cfg.SetConfigFile(configPath)
	cfg.SetConfigType("toml")
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault(sessionsBackendKey, "toml")
	cfg.SetDefault(secretsBackendKey, "chain")
	cfg.SetDefault(redisAddrKey, "127.0.0.1:6379")
	cfg.SetDefault(redisPrefixKey, redisrepo.DefaultKeyPrefix)

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	return cfg, nil
}

func wireSessionStore(cfg *viper.Viper) (ports.SessionStore, error) {
	switch backend := cfg.GetString(sessionsBackendKey); backend {
	case "", "toml":
		store, err := tomlrepo.NewSessionStore(cfg, ports.SystemClock{})
		if err != nil {
			return nil, fmt.Errorf("wire session store: %w", err)
		}
		return store, nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr: cfg.GetString(redisAddrKey),
			DB:   cfg.GetInt(redisDBKey),
		})
		store, err := redisrepo.NewSessionStore(client, cfg.GetString(redisPrefixKey), cfg.GetDuration(redisTTLKey))
		if err != nil {
			return nil, fmt.Errorf("wire redis session store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown sessions backend %q", backend)
	}
}

func wireCredentialStore(cfg *viper.Viper, fileRoot string) (ports.CredentialStore, error) {
	switch backend := cfg.GetString(secretsBackendKey); backend {
	case "", "chain":
		store, err := chainstore.NewPassFirstWithFileFallback(fileRoot)
		if err != nil {
			return nil, fmt.Errorf("wire credential store chain: %w", err)
		}
		return store, nil
	case "file":
		return filestore.NewStore(fileRoot), nil
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", backend)
	}
}

// resolveCredentials picks the --user flag over the configured default account.
func (a *app) resolveCredentials(ctx context.Context, username string) (domain.Credentials, error) {
	if strings.TrimSpace(username) == "" {
		username = a.config.GetString(accountUsernameKey)
	}
	if strings.TrimSpace(username) == "" {
		return domain.Credentials{}, errNoAccount
	}

	credentials, err := a.credentials.Get(ctx, username)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("load credentials for %s: %w", username, err)
	}

	return credentials, nil
}

func (a *app) userPortalClient(credentials domain.Credentials) *application.UserPortalClient {
	return application.NewUserPortalClient(a.userPortal, a.sessions, credentials, a.logger)
}

func (a *app) nautaClient(credentials domain.Credentials) *application.NautaClient {
	return application.NewNautaClient(a.nauta, a.sessions, credentials, a.logger)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
