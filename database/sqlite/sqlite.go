// Package sqlite implements the metabo-ui stores on a local SQLite file via
// gorm. It backs local development and the test suites.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/metabo-ui/metabo-ui/database/model"
	"github.com/metabo-ui/metabo-ui/database/query"

	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var (
	_ model.Store           = (*Store)(nil)
	_ model.UserStore       = (*UserStore)(nil)
	_ model.MetaboliteStore = (*MetaboliteStore)(nil)
)

// Options configure Open.
type Options struct {
	Path             string
	UsersTable       string
	MetabolitesTable string
	Debug            bool
}

// Store is a SQLite-backed model.Store.
type Store struct {
	db          *gorm.DB
	users       *UserStore
	metabolites *MetaboliteStore
}

// Open opens (creating if needed) the database file and migrates both tables.
func Open(opts Options) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, err
	}

	gormLogger := logger.Discard
	if opts.Debug {
		gormLogger = logger.Default
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	dsn := opts.Path + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL"
	db, err := gorm.Open(sqlitedriver.Open(dsn), c)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", opts.Path, err)
	}

	for _, pragma := range []string{"PRAGMA cache_size = -64000;", "PRAGMA temp_store = MEMORY;"} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Table(opts.UsersTable).AutoMigrate(&model.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate table %s: %w", opts.UsersTable, err)
	}
	if err := db.Table(opts.MetabolitesTable).AutoMigrate(&model.Metabolite{}); err != nil {
		return nil, fmt.Errorf("failed to migrate table %s: %w", opts.MetabolitesTable, err)
	}

	return &Store{
		db:          db,
		users:       &UserStore{db: db, table: opts.UsersTable},
		metabolites: &MetaboliteStore{db: db, table: opts.MetabolitesTable},
	}, nil
}

func (s *Store) Users() model.UserStore { return s.users }

func (s *Store) Metabolites() model.MetaboliteStore { return s.metabolites }

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	if err := s.db.Exec("PRAGMA wal_checkpoint;").Error; err != nil {
		return err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// UserStore is the users table.
type UserStore struct {
	db    *gorm.DB
	table string
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *UserStore) first(ctx context.Context, cond string, arg string) (*model.User, error) {
	user := &model.User{}
	err := s.db.WithContext(ctx).Table(s.table).Where(cond, arg).First(user).Error
	if isNotFound(err) {
		return nil, model.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Table(s.table).Order("email ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserStore) Upsert(ctx context.Context, user *model.User) error {
	err := s.db.WithContext(ctx).Table(s.table).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Table(s.table).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// MetaboliteStore is the metabolites table.
type MetaboliteStore struct {
	db    *gorm.DB
	table string
}

func (s *MetaboliteStore) Search(ctx context.Context, q *query.Query) ([]model.MetaboliteSummary, error) {
	tx := s.db.WithContext(ctx).Table(s.table).
		Select("id", "common_name", "formula", "average_molecular_weight", "pubchem_compound_id")
	for _, c := range q.Conditions {
		cond, args, err := whereClause(c)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(cond, args...)
	}

	var out []model.MetaboliteSummary
	if err := tx.Order("average_molecular_weight ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to search metabolites: %w", err)
	}
	return out, nil
}

// whereClause renders a condition as a gorm placeholder expression. Field
// names come from the query package constants, never from the request.
func whereClause(c query.Condition) (string, []any, error) {
	switch c.Op {
	case query.OpBetween:
		return c.Field + " BETWEEN ? AND ?", []any{c.Params[0].Value, c.Params[1].Value}, nil
	case query.OpGTE, query.OpLTE:
		return fmt.Sprintf("%s %s ?", c.Field, c.Op), []any{c.Params[0].Value}, nil
	default:
		return "", nil, fmt.Errorf("unsupported operator %q", c.Op)
	}
}

func (s *MetaboliteStore) GetByID(ctx context.Context, id string) (*model.Metabolite, error) {
	m := &model.Metabolite{}
	err := s.db.WithContext(ctx).Table(s.table).Where("id = ?", id).First(m).Error
	if isNotFound(err) {
		return nil, model.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get metabolite: %w", err)
	}
	return m, nil
}

func (s *MetaboliteStore) Upsert(ctx context.Context, m *model.Metabolite) error {
	err := s.db.WithContext(ctx).Table(s.table).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert metabolite: %w", err)
	}
	return nil
}
