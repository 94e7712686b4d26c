package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	cerrors "github.com/stockroom/catalog/internal/errors"
)

const skipIntegrationTests = "CATALOG_SKIP_INTEGRATION_TESTS"

// ProductStoreSuite is a test suite for the PgStore implementation.
type ProductStoreSuite struct {
	suite.Suite                             // Embedding testify suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for integration tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool for integration tests
	store       ProductStore                //
	logger      *slog.Logger                // Logger for the test suite
	ctx         context.Context             // Context for the test suite, used for cancellation and timeouts
}

// SetupSuite initializes the test suite by setting up a PostgreSQL container.
func (s *ProductStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "catalog_db"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container with the specified configuration. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		// Ensure the container is ready to accept connections on the default PostgreSQL port.
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	// 3.1 Ping the database to ensure the connection is established
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Database migration
	// Build path to migrations directory
	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "../../db/migrations")
	sourceURL := "file://" + migrationsPath
	// Create a new migrate instance with the source URL and connection string
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	// Apply all available migrations
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for integration tests")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for ProductStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ProductStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating PostgreSQL container...")
		err := s.pgContainer.Terminate(s.ctx)
		if err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		} else {
			s.logger.Info("PostgreSQL container terminated.")
		}
	}
}

// SetupTest prepares the database for each test by truncating the products table.
func (s *ProductStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

// TestProductStoreIntegration runs the ProductStore integration tests.
func TestProductStoreIntegration(t *testing.T) {
	// Skip integration tests if the environment variable is set
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	// Run the test suite
	suite.Run(t, new(ProductStoreSuite))
}

// createTestProduct is a helper function to create a product for testing purposes.
func (s *ProductStoreSuite) createTestProduct(name, category string, quantity int32, price int64) *Product {
	s.T().Helper()
	product, err := s.store.Create(s.ctx, name, category, quantity, price)
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return product
}

func (s *ProductStoreSuite) TestCreate() {
	s.SetupTest()
	// when
	created := s.createTestProduct("Lego Set", "Toys", 10, 4999)

	// then
	require.NotEqual(s.T(), uuid.Nil, created.ID, "Created product ID should be assigned")
	require.Equal(s.T(), "Lego Set", created.Name)
	require.Equal(s.T(), "Toys", created.Category)
	require.Equal(s.T(), int32(10), created.Quantity)
	require.Equal(s.T(), int64(4999), created.Price)
}

func (s *ProductStoreSuite) TestFindByID() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Lego Set", "Toys", 10, 4999)

	// when
	fetched, err := s.store.FindByID(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "FindByID should not return an error")
	require.Equal(s.T(), created, fetched)
}

func (s *ProductStoreSuite) TestFindByID_NotFound() {
	s.SetupTest()
	// when
	_, err := s.store.FindByID(s.ctx, uuid.New())

	// then
	require.ErrorIs(s.T(), err, cerrors.ErrProductNotFound, "Expected ErrProductNotFound for non-existent product")
}

func (s *ProductStoreSuite) TestFindAll() {
	s.SetupTest()
	// given
	s.createTestProduct("Lego Set", "Toys", 10, 4999)
	s.createTestProduct("Drill", "Tools", 3, 12999)

	// when
	products, err := s.store.FindAll(s.ctx)

	// then
	require.NoError(s.T(), err)
	require.Len(s.T(), products, 2)
}

func (s *ProductStoreSuite) TestFindByCategory() {
	s.SetupTest()
	// given
	s.createTestProduct("Lego Set", "Toys", 10, 4999)
	s.createTestProduct("Drill", "Tools", 3, 12999)

	// when: category match ignores case
	products, err := s.store.FindByCategory(s.ctx, "tOyS")

	// then
	require.NoError(s.T(), err)
	require.Len(s.T(), products, 1)
	assert.Equal(s.T(), "Lego Set", products[0].Name)
}

func (s *ProductStoreSuite) TestFindByPriceRangeAndCategory() {
	s.SetupTest()
	// given
	s.createTestProduct("Lego Set", "Toys", 10, 4999)
	s.createTestProduct("Plush Bear", "Toys", 10, 1999)
	s.createTestProduct("Drill", "Tools", 3, 4999)

	// when: bounds are inclusive, category match is exact
	products, err := s.store.FindByPriceRangeAndCategory(s.ctx, "Toys", 1999, 4999)

	// then
	require.NoError(s.T(), err)
	require.Len(s.T(), products, 2)

	// when: lowercase category does not match
	products, err = s.store.FindByPriceRangeAndCategory(s.ctx, "toys", 0, 10000)

	// then
	require.NoError(s.T(), err)
	require.Empty(s.T(), products)
}

func (s *ProductStoreSuite) TestUpdate() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Lego Set", "Toys", 10, 4999)

	// when
	updated, err := s.store.Update(s.ctx, created.ID, "Lego Technic", "Construction", 5, 7999)

	// then
	require.NoError(s.T(), err)
	require.Equal(s.T(), created.ID, updated.ID, "Update must not change the ID")
	require.Equal(s.T(), "Lego Technic", updated.Name)
	require.Equal(s.T(), "Construction", updated.Category)
	require.Equal(s.T(), int32(5), updated.Quantity)
	require.Equal(s.T(), int64(7999), updated.Price)
}

func (s *ProductStoreSuite) TestUpdate_NotFound() {
	s.SetupTest()
	// when
	_, err := s.store.Update(s.ctx, uuid.New(), "Lego", "Toys", 1, 1)

	// then
	require.ErrorIs(s.T(), err, cerrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestDeleteByID() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Lego Set", "Toys", 10, 4999)

	// when
	err := s.store.DeleteByID(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err)
	_, err = s.store.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, cerrors.ErrProductNotFound)
	require.ErrorIs(s.T(), s.store.DeleteByID(s.ctx, created.ID), cerrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestDeleteAll() {
	s.SetupTest()
	// given
	s.createTestProduct("Lego Set", "Toys", 10, 4999)
	s.createTestProduct("Drill", "Tools", 3, 12999)

	// when
	err := s.store.DeleteAll(s.ctx)

	// then
	require.NoError(s.T(), err)
	products, err := s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	require.Empty(s.T(), products)
}

func (s *ProductStoreSuite) TestCompareAndSwapQuantity() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Lego Set", "Toys", 10, 4999)

	// when: the stored quantity matches the expectation
	swapped, err := s.store.CompareAndSwapQuantity(s.ctx, created.ID, 10, 6)

	// then
	require.NoError(s.T(), err)
	require.True(s.T(), swapped)
	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(6), fetched.Quantity)

	// when: the expectation is stale
	swapped, err = s.store.CompareAndSwapQuantity(s.ctx, created.ID, 10, 2)

	// then: the write is refused and nothing changes
	require.NoError(s.T(), err)
	require.False(s.T(), swapped)
	fetched, err = s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(6), fetched.Quantity)
}

func (s *ProductStoreSuite) TestCompareAndSwapQuantity_MissingProduct() {
	s.SetupTest()
	// when
	swapped, err := s.store.CompareAndSwapQuantity(s.ctx, uuid.New(), 0, 5)

	// then
	require.NoError(s.T(), err)
	require.False(s.T(), swapped)
}
