package pg

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/itchan-dev/textboard/internal/config"
	"github.com/itchan-dev/textboard/internal/kv"
	"github.com/itchan-dev/textboard/internal/kv/sqlkv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var store *sqlkv.Store

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() || os.Getenv("TEXTBOARD_SKIP_INTEGRATION") != "" {
		log.Print("skipping postgres integration tests")
		os.Exit(0)
	}

	ctx := context.Background()
	var container *postgres.PostgresContainer
	store, container = mustSetup(ctx)

	exitCode := m.Run()
	teardown(ctx, store, container)
	os.Exit(exitCode)
}

func mustSetup(ctx context.Context) (*sqlkv.Store, *postgres.PostgresContainer) {
	dbName := "textboard"
	dbUser := "user"
	dbPassword := "password"
	container, err := postgres.Run(ctx,
		"postgres:15.3-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			// postgres restarts itself after the first startup
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}
	containerPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("failed to obtain container port: %s", err)
	}
	port, err := strconv.Atoi(containerPort.Port())
	if err != nil {
		log.Fatalf("failed to obtain int container port: %s", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("failed to obtain container host: %s", err)
	}

	s, err := Open(ctx, config.Pg{Host: host, Port: port, User: dbUser, Dbname: dbName}, dbPassword, DefaultConnectionConfig())
	if err != nil {
		log.Fatalf("failed to connect to postgres container: %s", err)
	}
	return s, container
}

func teardown(ctx context.Context, s *sqlkv.Store, container *postgres.PostgresContainer) {
	if err := s.Close(); err != nil {
		log.Printf("failed to close storage connection: %s", err)
	}
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "board:absent")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "board:pg", "one"))
	require.NoError(t, store.Set(ctx, "board:pg", "two"))

	v, ok, err := store.Get(ctx, "board:pg")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
}

func TestListTreatsUnderscoreLiterally(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, kv.PostKey("pg_1", 1), "a"))
	require.NoError(t, store.Set(ctx, kv.PostKey("pg_1", 2), "b"))
	require.NoError(t, store.Set(ctx, kv.PostKey("pgX1", 1), "x"))
	require.NoError(t, store.Set(ctx, kv.PostKey("pg_10", 1), "c"))

	keys, err := store.List(ctx, kv.PostPrefix("pg_1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"post:pg_1:1", "post:pg_1:2"}, keys)

	keys, err = store.List(ctx, kv.PostPrefix("none"))
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSetManyIsAtomic(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, store.SetMany(ctx, []kv.Entry{
		{Key: "post:pgtx_1:1", Value: "post"},
		{Key: "thread:pg:pgtx_1", Value: "thread"},
	}))
	_, ok, err := store.Get(ctx, "thread:pg:pgtx_1")
	require.NoError(t, err)
	assert.True(t, ok)

	// NUL bytes are rejected by postgres text columns, the whole batch must roll back
	err = store.SetMany(ctx, []kv.Entry{
		{Key: "post:pgtx_2:1", Value: "post"},
		{Key: "thread:pg:pgtx_2", Value: "bad\x00value"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.ErrUnavailable)

	_, ok, err = store.Get(ctx, "post:pgtx_2:1")
	require.NoError(t, err)
	assert.False(t, ok, "first entry of a failed batch must not be visible")
}
