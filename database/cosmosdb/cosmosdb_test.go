package cosmosdb

import (
	"context"
	"net/http"
	"testing"

	"github.com/metabo-ui/metabo-ui/database/model"
	"github.com/metabo-ui/metabo-ui/database/query"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContainer keeps documents by id and answers every query with the
// canned result, recording what was asked.
type fakeContainer struct {
	docs        map[string][]byte
	queryResult [][]byte

	lastQuery  string
	lastParams []azcosmos.QueryParameter
	upserts    int
}

func newFakeContainer() *fakeContainer {
	return &fakeContainer{docs: map[string][]byte{}}
}

func notFound() error {
	return &azcore.ResponseError{StatusCode: http.StatusNotFound}
}

func (f *fakeContainer) ReadItem(_ context.Context, _ azcosmos.PartitionKey, itemID string, _ *azcosmos.ItemOptions) (azcosmos.ItemResponse, error) {
	doc, ok := f.docs[itemID]
	if !ok {
		return azcosmos.ItemResponse{}, notFound()
	}
	return azcosmos.ItemResponse{Value: doc}, nil
}

func (f *fakeContainer) UpsertItem(_ context.Context, _ azcosmos.PartitionKey, item []byte, _ *azcosmos.ItemOptions) (azcosmos.ItemResponse, error) {
	var doc struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(item, &doc); err != nil {
		return azcosmos.ItemResponse{}, err
	}
	f.docs[doc.ID] = item
	f.upserts++
	return azcosmos.ItemResponse{Value: item}, nil
}

func (f *fakeContainer) DeleteItem(_ context.Context, _ azcosmos.PartitionKey, itemID string, _ *azcosmos.ItemOptions) (azcosmos.ItemResponse, error) {
	if _, ok := f.docs[itemID]; !ok {
		return azcosmos.ItemResponse{}, notFound()
	}
	delete(f.docs, itemID)
	return azcosmos.ItemResponse{}, nil
}

func (f *fakeContainer) NewQueryItemsPager(q string, _ azcosmos.PartitionKey, o *azcosmos.QueryOptions) *runtime.Pager[azcosmos.QueryItemsResponse] {
	f.lastQuery = q
	if o != nil {
		f.lastParams = o.QueryParameters
	}
	items := f.queryResult
	return runtime.NewPager(runtime.PagingHandler[azcosmos.QueryItemsResponse]{
		More: func(azcosmos.QueryItemsResponse) bool { return false },
		Fetcher: func(context.Context, *azcosmos.QueryItemsResponse) (azcosmos.QueryItemsResponse, error) {
			return azcosmos.QueryItemsResponse{Items: items}, nil
		},
	})
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestUserStore_GetByEmail(t *testing.T) {
	ctx := context.Background()
	c := newFakeContainer()
	s := newUserStore(c)

	_, err := s.GetByEmail(ctx, "ann@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, userByEmailQuery, c.lastQuery)
	assert.Equal(t, []azcosmos.QueryParameter{{Name: "@email", Value: "ann@example.com"}}, c.lastParams)

	ann := model.User{ID: "ann@example.com", Email: "ann@example.com", PwHash: "h", Role: "admin"}
	c.queryResult = [][]byte{mustJSON(t, ann), mustJSON(t, model.User{ID: "dup", Email: "ann@example.com"})}

	got, err := s.GetByEmail(ctx, "ann@example.com' OR '1'='1")
	require.NoError(t, err)
	assert.Equal(t, &ann, got)
	assert.Equal(t, userByEmailQuery, c.lastQuery)
	assert.Equal(t, "ann@example.com' OR '1'='1", c.lastParams[0].Value)
}

func TestUserStore_Documents(t *testing.T) {
	ctx := context.Background()
	c := newFakeContainer()
	s := newUserStore(c)

	u := &model.User{ID: "bob@example.com", Email: "bob@example.com", PwHash: "hash", Role: "user"}
	require.NoError(t, s.Upsert(ctx, u))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(c.docs["bob@example.com"], &doc))
	assert.Equal(t, map[string]any{"id": "bob@example.com", "email": "bob@example.com", "pw_hash": "hash", "role": "user"}, doc)

	got, err := s.GetByID(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	require.NoError(t, s.Delete(ctx, "bob@example.com"))
	assert.ErrorIs(t, s.Delete(ctx, "bob@example.com"), model.ErrNotFound)

	_, err = s.GetByID(ctx, "bob@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserStore_ListSorted(t *testing.T) {
	c := newFakeContainer()
	c.queryResult = [][]byte{
		[]byte(`{"id":"zed@example.com","email":"zed@example.com","role":"user","_etag":"x"}`),
		[]byte(`{"id":"amy@example.com","email":"amy@example.com","role":"admin"}`),
	}
	s := newUserStore(c)

	users, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "amy@example.com", users[0].Email)
	assert.Equal(t, "zed@example.com", users[1].Email)
	assert.Equal(t, listUsersQuery, c.lastQuery)
}

func TestMetaboliteStore_SearchIsParameterized(t *testing.T) {
	c := newFakeContainer()
	c.queryResult = [][]byte{
		[]byte(`{"id":"HMDB0000122","common_name":"Glucose","formula":"C6H12O6","average_molecular_weight":180.1559,"pubchem_compound_id":"5793"}`),
	}
	s := newMetaboliteStore(c)

	q, err := query.Build(query.Selection{query.MinWeight: {"50"}, query.MaxWeight: {"500"}})
	require.NoError(t, err)

	res, err := s.Search(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, res, 1)
	assert.Equal(t, "Glucose", res[0].CommonName)
	require.NotNil(t, res[0].AverageMolecularWeight)
	assert.InDelta(t, 180.1559, *res[0].AverageMolecularWeight, 1e-9)

	assert.Equal(t, query.Projection+" WHERE c.average_molecular_weight BETWEEN @minWeight AND @maxWeight", c.lastQuery)
	assert.Equal(t, []azcosmos.QueryParameter{
		{Name: "@minWeight", Value: float64(50)},
		{Name: "@maxWeight", Value: float64(500)},
	}, c.lastParams)
}

func TestMetaboliteStore_GetByID(t *testing.T) {
	ctx := context.Background()
	c := newFakeContainer()
	s := newMetaboliteStore(c)

	w := 386.6535
	m := &model.Metabolite{ID: "HMDB0000067", CommonName: "Cholesterol", AverageMolecularWeight: &w,
		Taxonomy: &model.Taxonomy{Kingdom: "Organic compounds", Class: "Steroids and steroid derivatives"}}
	require.NoError(t, s.Upsert(ctx, m))

	got, err := s.GetByID(ctx, "HMDB0000067")
	require.NoError(t, err)
	assert.Equal(t, m, got)

	_, err = s.GetByID(ctx, "HMDB0000000")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
