package postgres_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/kennelhq/kennel"
	"github.com/kennelhq/kennel/database/postgres"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	testCleanup  func()
)

// getSharedTestDatabase returns a shared database pool for all tests
// This significantly improves test performance by reusing the same container
func getSharedTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}

		testCleanup = func() {
			if testPool != nil {
				testPool.Close()
			}
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				t.Logf("failed to terminate container: %s", err)
			}
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			testCleanup()
			t.Fatalf("failed to get connection string: %v", err)
		}

		pool, err := pgxpool.New(ctx, connectionStr)
		if err != nil {
			testCleanup()
			t.Fatalf("could not connect to database: %v", err)
		}

		testPool = pool
	})

	return testPool
}

// randomSuffix produces a valid table-name suffix unique per call.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// setupTestRepos migrates tables with unique names for test isolation and
// returns repos backed by them. The tables are dropped on cleanup.
func setupTestRepos(t *testing.T) (*postgres.UserRepo, *postgres.ImageRepo) {
	t.Helper()

	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	suffix := randomSuffix()
	tables := kennel.Tables{
		Users:  fmt.Sprintf("users_%s", suffix),
		Images: fmt.Sprintf("dog_images_%s", suffix),
	}

	require.NoError(t, postgres.Migrate(ctx, pool, tables), "failed to migrate")

	users, err := postgres.NewUserRepo(pool, tables)
	require.NoError(t, err, "failed to create user repo")

	images, err := postgres.NewImageRepo(pool, tables)
	require.NoError(t, err, "failed to create image repo")

	t.Cleanup(func() {
		_ = postgres.DropTables(ctx, pool, tables)
	})

	return users, images
}

func createTestUser(t *testing.T, users *postgres.UserRepo, username string) kennel.User {
	t.Helper()

	u, err := users.Create(context.Background(), kennel.User{
		Username:     username,
		PasswordHash: "$2a$10$fakehashfortesting",
		Role:         kennel.RoleUser,
	})
	require.NoError(t, err)
	return u
}
