package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Rrens/pain-mapper/internal/repository/storetest"
	"github.com/stretchr/testify/suite"
)

type sqliteStoreSuite struct {
	storetest.Suite
	db *DB
}

func (s *sqliteStoreSuite) SetupTest() {
	db, err := Open(context.Background(), filepath.Join(s.T().TempDir(), "test.db"))
	s.Require().NoError(err)
	s.Require().NoError(RunMigrations(db))

	s.db = db
	s.Store = storetest.Store{
		Sessions:    NewSessionRepository(db),
		PainPoints:  NewPainPointRepository(db),
		History:     NewHistoryRepository(db),
		Suggestions: NewSuggestionRepository(db),
		Tx:          db,
	}
}

func (s *sqliteStoreSuite) TearDownTest() {
	s.db.Close()
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, new(sqliteStoreSuite))
}
