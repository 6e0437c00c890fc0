package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/metabo-ui/metabo-ui/database/model"
	"github.com/metabo-ui/metabo-ui/database/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{
		Path:             filepath.Join(t.TempDir(), "test.db"),
		UsersTable:       "users",
		MetabolitesTable: "metabolites",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func weight(v float64) *float64 { return &v }

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	users := s.Users()

	_, err := users.GetByEmail(ctx, "ann@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)

	ann := &model.User{ID: "ann@example.com", Email: "ann@example.com", PwHash: "h1", Role: "user"}
	require.NoError(t, users.Upsert(ctx, ann))

	got, err := users.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, ann, got)

	_, err = users.GetByEmail(ctx, "Ann@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)

	ann.Role = "admin"
	require.NoError(t, users.Upsert(ctx, ann))
	got, err = users.GetByID(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Role)

	bob := &model.User{ID: "bob@example.com", Email: "bob@example.com", PwHash: "h2", Role: "user"}
	require.NoError(t, users.Upsert(ctx, bob))

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ann@example.com", all[0].Email)
	assert.Equal(t, "bob@example.com", all[1].Email)

	require.NoError(t, users.Delete(ctx, "bob@example.com"))
	assert.ErrorIs(t, users.Delete(ctx, "bob@example.com"), model.ErrNotFound)
	_, err = users.GetByID(ctx, "bob@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMetaboliteStore_Search(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	metabolites := s.Metabolites()

	for _, m := range []*model.Metabolite{
		{ID: "HMDB0000001", CommonName: "1-Methylhistidine", Formula: "C7H11N3O2", AverageMolecularWeight: weight(169.1811)},
		{ID: "HMDB0000122", CommonName: "Glucose", Formula: "C6H12O6", AverageMolecularWeight: weight(180.1559), PubchemCompoundID: "5793",
			Taxonomy: &model.Taxonomy{Kingdom: "Organic compounds", Class: "Organooxygen compounds"}},
		{ID: "HMDB0000067", CommonName: "Cholesterol", Formula: "C27H46O", AverageMolecularWeight: weight(386.6535)},
		{ID: "HMDB9999999", CommonName: "Unknown"},
	} {
		require.NoError(t, metabolites.Upsert(ctx, m))
	}

	tests := []struct {
		name string
		sel  query.Selection
		ids  []string
	}{
		{name: "min", sel: query.Selection{query.MinWeight: {"175"}}, ids: []string{"HMDB0000122", "HMDB0000067"}},
		{name: "max", sel: query.Selection{query.MaxWeight: {"175"}}, ids: []string{"HMDB0000001"}},
		{name: "between", sel: query.Selection{query.MinWeight: {"170"}, query.MaxWeight: {"200"}}, ids: []string{"HMDB0000122"}},
		{name: "inclusive bounds", sel: query.Selection{query.MinWeight: {"180.1559"}, query.MaxWeight: {"180.1559"}}, ids: []string{"HMDB0000122"}},
		{name: "nothing", sel: query.Selection{query.MinWeight: {"1000"}}, ids: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := query.Build(tt.sel)
			require.NoError(t, err)

			res, err := metabolites.Search(ctx, q)
			require.NoError(t, err)

			var ids []string
			for _, r := range res {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestMetaboliteStore_GetByID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	metabolites := s.Metabolites()

	glucose := &model.Metabolite{ID: "HMDB0000122", CommonName: "Glucose", AverageMolecularWeight: weight(180.1559),
		Taxonomy: &model.Taxonomy{Kingdom: "Organic compounds", DirectParent: "Hexoses"}}
	require.NoError(t, metabolites.Upsert(ctx, glucose))
	require.NoError(t, metabolites.Upsert(ctx, &model.Metabolite{ID: "HMDB0000002", CommonName: "1,3-Diaminopropane"}))

	got, err := metabolites.GetByID(ctx, "HMDB0000122")
	require.NoError(t, err)
	assert.Equal(t, glucose, got)

	got, err = metabolites.GetByID(ctx, "HMDB0000002")
	require.NoError(t, err)
	assert.Nil(t, got.Taxonomy)
	assert.Nil(t, got.AverageMolecularWeight)

	_, err = metabolites.GetByID(ctx, "HMDB0000404")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStore_Ping(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
