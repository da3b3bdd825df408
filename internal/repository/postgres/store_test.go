package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/Rrens/pain-mapper/internal/repository/storetest"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
)

// Runs only when TEST_DATABASE_URL points at a disposable database
type postgresStoreSuite struct {
	storetest.Suite
	dsn string
	db  *DB
}

func (s *postgresStoreSuite) SetupSuite() {
	s.Require().NoError(RunMigrations(s.dsn))
}

func (s *postgresStoreSuite) SetupTest() {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, s.dsn)
	s.Require().NoError(err)

	_, err = pool.Exec(ctx, `TRUNCATE sessions CASCADE`)
	s.Require().NoError(err)

	s.db = &DB{Pool: pool}
	s.Store = storetest.Store{
		Sessions:    NewSessionRepository(s.db),
		PainPoints:  NewPainPointRepository(s.db),
		History:     NewHistoryRepository(s.db),
		Suggestions: NewSuggestionRepository(s.db),
		Tx:          s.db,
	}
}

func (s *postgresStoreSuite) TearDownTest() {
	s.db.Close()
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, &postgresStoreSuite{dsn: dsn})
}
