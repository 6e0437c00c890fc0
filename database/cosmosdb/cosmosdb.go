// Package cosmosdb implements the metabo-ui stores on Azure Cosmos DB
// (SQL API). Every container is partitioned on /id.
package cosmosdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/metabo-ui/metabo-ui/database/model"
	"github.com/metabo-ui/metabo-ui/database/query"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/goccy/go-json"
)

var (
	_ model.Store           = (*Store)(nil)
	_ model.UserStore       = (*UserStore)(nil)
	_ model.MetaboliteStore = (*MetaboliteStore)(nil)
)

const (
	userByEmailQuery = "SELECT * FROM c WHERE c.email = @email"
	listUsersQuery   = "SELECT c.id, c.email, c.role FROM c"
)

// container is the subset of *azcosmos.ContainerClient the stores use.
type container interface {
	ReadItem(ctx context.Context, partitionKey azcosmos.PartitionKey, itemID string, o *azcosmos.ItemOptions) (azcosmos.ItemResponse, error)
	UpsertItem(ctx context.Context, partitionKey azcosmos.PartitionKey, item []byte, o *azcosmos.ItemOptions) (azcosmos.ItemResponse, error)
	DeleteItem(ctx context.Context, partitionKey azcosmos.PartitionKey, itemID string, o *azcosmos.ItemOptions) (azcosmos.ItemResponse, error)
	NewQueryItemsPager(query string, partitionKey azcosmos.PartitionKey, o *azcosmos.QueryOptions) *runtime.Pager[azcosmos.QueryItemsResponse]
}

// Options configure Open.
type Options struct {
	Endpoint             string
	Key                  string
	DatabaseID           string
	UsersContainer       string
	MetabolitesContainer string
	// MetadataContainer is optional; it is only checked for existence.
	MetadataContainer string
	ApplicationID     string
}

// Store is a Cosmos DB backed model.Store.
type Store struct {
	database    *azcosmos.DatabaseClient
	users       *UserStore
	metabolites *MetaboliteStore
}

// Open connects to the account and verifies that the database and every
// configured container exist. Any failure is returned; nothing is created.
func Open(ctx context.Context, opts Options) (*Store, error) {
	cred, err := azcosmos.NewKeyCredential(opts.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid Cosmos DB key: %w", err)
	}

	clientOpts := &azcosmos.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Telemetry: policy.TelemetryOptions{ApplicationID: opts.ApplicationID},
		},
	}
	client, err := azcosmos.NewClientWithKey(opts.Endpoint, cred, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cosmos DB client: %w", err)
	}

	database, err := client.NewDatabase(opts.DatabaseID)
	if err != nil {
		return nil, err
	}
	if _, err := database.Read(ctx, nil); err != nil {
		return nil, fmt.Errorf("database %q is not reachable: %w", opts.DatabaseID, err)
	}

	users, err := openContainer(ctx, database, opts.UsersContainer)
	if err != nil {
		return nil, err
	}
	metabolites, err := openContainer(ctx, database, opts.MetabolitesContainer)
	if err != nil {
		return nil, err
	}
	if opts.MetadataContainer != "" {
		if _, err := openContainer(ctx, database, opts.MetadataContainer); err != nil {
			return nil, err
		}
	}

	return &Store{
		database:    database,
		users:       newUserStore(users),
		metabolites: newMetaboliteStore(metabolites),
	}, nil
}

func openContainer(ctx context.Context, database *azcosmos.DatabaseClient, id string) (*azcosmos.ContainerClient, error) {
	c, err := database.NewContainer(id)
	if err != nil {
		return nil, err
	}
	if _, err := c.Read(ctx, nil); err != nil {
		return nil, fmt.Errorf("container %q is not reachable: %w", id, err)
	}
	return c, nil
}

func (s *Store) Users() model.UserStore { return s.users }

func (s *Store) Metabolites() model.MetaboliteStore { return s.metabolites }

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.database.Read(ctx, nil)
	return err
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Store) Close(_ context.Context) error { return nil }

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

// queryAll drains a cross-partition query and decodes every item into T.
func queryAll[T any](ctx context.Context, c container, sql string, params []azcosmos.QueryParameter) ([]T, error) {
	pager := c.NewQueryItemsPager(sql, azcosmos.NewPartitionKey(), &azcosmos.QueryOptions{QueryParameters: params})

	var out []T
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			var v T
			if err := json.Unmarshal(item, &v); err != nil {
				return nil, fmt.Errorf("failed to decode document: %w", err)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func readItem[T any](ctx context.Context, c container, id string) (*T, error) {
	resp, err := c.ReadItem(ctx, azcosmos.NewPartitionKeyString(id), id, nil)
	if isNotFound(err) {
		return nil, model.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	v := new(T)
	if err := json.Unmarshal(resp.Value, v); err != nil {
		return nil, fmt.Errorf("failed to decode document %q: %w", id, err)
	}
	return v, nil
}

func upsertItem(ctx context.Context, c container, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = c.UpsertItem(ctx, azcosmos.NewPartitionKeyString(id), data, nil)
	return err
}

// UserStore is the users container.
type UserStore struct {
	c container
}

func newUserStore(c container) *UserStore {
	return &UserStore{c: c}
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := readItem[model.User](ctx, s.c, id)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	return u, err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := queryAll[model.User](ctx, s.c, userByEmailQuery, []azcosmos.QueryParameter{{Name: "@email", Value: email}})
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, model.ErrNotFound
	}
	return &users[0], nil
}

func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	users, err := queryAll[model.User](ctx, s.c, listUsersQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (s *UserStore) Upsert(ctx context.Context, user *model.User) error {
	if err := upsertItem(ctx, s.c, user.ID, user); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	_, err := s.c.DeleteItem(ctx, azcosmos.NewPartitionKeyString(id), id, nil)
	if isNotFound(err) {
		return model.ErrNotFound
	} else if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// MetaboliteStore is the metabolites container.
type MetaboliteStore struct {
	c container
}

func newMetaboliteStore(c container) *MetaboliteStore {
	return &MetaboliteStore{c: c}
}

// Search runs q.SQL with its parameters bound by the SDK.
func (s *MetaboliteStore) Search(ctx context.Context, q *query.Query) ([]model.MetaboliteSummary, error) {
	out, err := queryAll[model.MetaboliteSummary](ctx, s.c, q.SQL(), queryParameters(q))
	if err != nil {
		return nil, fmt.Errorf("failed to search metabolites: %w", err)
	}
	return out, nil
}

func queryParameters(q *query.Query) []azcosmos.QueryParameter {
	params := q.Parameters()
	out := make([]azcosmos.QueryParameter, 0, len(params))
	for _, p := range params {
		out = append(out, azcosmos.QueryParameter{Name: p.Name, Value: p.Value})
	}
	return out
}

func (s *MetaboliteStore) GetByID(ctx context.Context, id string) (*model.Metabolite, error) {
	m, err := readItem[model.Metabolite](ctx, s.c, id)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("failed to read metabolite: %w", err)
	}
	return m, err
}

func (s *MetaboliteStore) Upsert(ctx context.Context, m *model.Metabolite) error {
	if err := upsertItem(ctx, s.c, m.ID, m); err != nil {
		return fmt.Errorf("failed to upsert metabolite: %w", err)
	}
	return nil
}
