package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/itchan-dev/textboard/internal/config"
	"github.com/itchan-dev/textboard/internal/domain"
	"github.com/itchan-dev/textboard/internal/handler"
	"github.com/itchan-dev/textboard/internal/jwt"
	"github.com/itchan-dev/textboard/internal/kv"
	"github.com/itchan-dev/textboard/internal/kv/memory"
	"github.com/itchan-dev/textboard/internal/kv/pg"
	kvredis "github.com/itchan-dev/textboard/internal/kv/redis"
	"github.com/itchan-dev/textboard/internal/kv/sqlite"
	"github.com/itchan-dev/textboard/internal/logger"
	"github.com/itchan-dev/textboard/internal/markdown"
	"github.com/itchan-dev/textboard/internal/middleware/ratelimiter"
	"github.com/itchan-dev/textboard/internal/service"
	"github.com/itchan-dev/textboard/internal/session"
	"github.com/itchan-dev/textboard/internal/storage"
	"github.com/itchan-dev/textboard/internal/utils"
	"github.com/itchan-dev/textboard/internal/view"
	"github.com/redis/go-redis/v9"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config      *config.Config
	Store       kv.Store
	Forum       *service.Forum
	Sessions    *session.Manager
	Jwt         *jwt.Jwt
	Handler     *handler.Handler
	View        *view.View
	CreateLimit *ratelimiter.IdentityRateLimiter
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	forum := service.NewForum(
		storage.New(store),
		utils.NewValidator(&cfg.Public),
		utils.NewNameFormatter(cfg.TripcodeSalt()),
		SeedBoards(cfg.Public.SeedBoards),
	)
	guard := &session.Guard{}
	loc := cfg.Public.Location()

	return &Dependencies{
		Config:      cfg,
		Store:       store,
		Forum:       forum,
		Sessions:    session.NewManager(forum, cfg.Public.SessionTTL),
		Jwt:         jwt.New(cfg.JwtKey(), cfg.Public.SessionTTL),
		Handler:     handler.New(forum, guard, loc),
		View:        view.New(markdown.New(), guard, loc),
		CreateLimit: ratelimiter.New(cfg.Public.CreateRate, cfg.Public.CreateBurst, time.Hour),
	}, nil
}

// OpenStore picks the key-value adapter named by storage.driver.
func OpenStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	s := cfg.Public.Storage
	log := logger.Component("setup")

	switch s.Driver {
	case config.DriverMemory:
		if s.MemoryPath == "" {
			log.Warn("memory storage without memory_path, data is lost on restart")
			return memory.New(), nil
		}
		log.Info("using memory storage", "path", s.MemoryPath)
		return memory.Open(s.MemoryPath)
	case config.DriverRedis:
		log.Info("using redis storage", "addr", s.Redis.Addr, "db", s.Redis.DB)
		client := redis.NewClient(&redis.Options{
			Addr:     s.Redis.Addr,
			Password: cfg.Private.RedisPassword,
			DB:       s.Redis.DB,
		})
		return kvredis.New(client, s.Redis.Namespace), nil
	case config.DriverPg:
		log.Info("using postgres storage", "host", s.Pg.Host, "dbname", s.Pg.Dbname)
		return pg.Open(ctx, s.Pg, cfg.Private.PgPassword, pg.DefaultConnectionConfig())
	case config.DriverSqlite:
		log.Info("using sqlite storage", "path", s.SqlitePath)
		if err := ensureDir(s.SqlitePath); err != nil {
			return nil, err
		}
		return sqlite.Open(ctx, s.SqlitePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", s.Driver)
	}
}

func ensureDir(file string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// SeedBoards orders the configured boards by their position in the file.
// An empty list leaves the built-in defaults in place.
func SeedBoards(seed []config.SeedBoard) []domain.Board {
	if len(seed) == 0 {
		return nil
	}
	boards := make([]domain.Board, 0, len(seed))
	for i, b := range seed {
		boards = append(boards, domain.Board{Id: b.Id, Name: b.Name, Description: b.Description, Position: i})
	}
	return boards
}

// Close releases the store and background workers.
func (d *Dependencies) Close() error {
	d.CreateLimit.Stop()
	if c, ok := d.Store.(kv.Closer); ok {
		return c.Close()
	}
	return nil
}
