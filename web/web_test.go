package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metabo-ui/metabo-ui/config"
	"github.com/metabo-ui/metabo-ui/database/model"
	"github.com/metabo-ui/metabo-ui/database/sqlite"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	godEmail    = "god@example.com"
	godPassword = "god-pass"
)

type testApp struct {
	t      *testing.T
	srv    *httptest.Server
	store  *sqlite.Store
	client *http.Client
}

func setup(t *testing.T) *testApp {
	t.Helper()
	store, err := sqlite.Open(sqlite.Options{
		Path:             filepath.Join(t.TempDir(), "web.db"),
		UsersTable:       "users",
		MetabolitesTable: "metabolites",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	cfg := &config.Config{
		SecretKey:     "test-secret-key-0123456789abcdef",
		Port:          5000,
		SessionMaxAge: 60,
		Admin:         config.AdminConfig{Email: godEmail, Password: godPassword},
		Database:      config.DatabaseConfig{Type: config.DatabaseTypeSQLite},
	}
	s := NewServer(cfg, store)
	require.NoError(t, s.AdminService().EnsureGodUser(context.Background(), godPassword))

	engine, err := s.initRouter()
	require.NoError(t, err)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	weight := 180.1559
	require.NoError(t, store.Metabolites().Upsert(context.Background(), &model.Metabolite{
		ID: "HMDB0000122", CommonName: "Glucose", Formula: "C6H12O6", AverageMolecularWeight: &weight, PubchemCompoundID: "5793",
		Taxonomy: &model.Taxonomy{Kingdom: "Organic compounds", DirectParent: "Hexoses"},
	}))

	return &testApp{t: t, srv: srv, store: store, client: newClient(t)}
}

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) do(client *http.Client, method, path string, form url.Values) (int, string, string) {
	a.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, a.srv.URL+path, body)
	require.NoError(a.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := client.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, resp.Header.Get("Location"), string(data)
}

func (a *testApp) get(path string) (int, string, string) {
	return a.do(a.client, http.MethodGet, path, nil)
}

func (a *testApp) post(path string, form url.Values) (int, string, string) {
	return a.do(a.client, http.MethodPost, path, form)
}

func (a *testApp) login(client *http.Client, email, password string) (int, string) {
	code, loc, _ := a.do(client, http.MethodPost, "/login", url.Values{"email": {email}, "password": {password}})
	return code, loc
}

func TestLoginRequired(t *testing.T) {
	app := setup(t)

	for _, path := range []string{"/", "/search", "/users", "/add_user", "/metabolites/HMDB0000122"} {
		code, loc, _ := app.get(path)
		assert.Equal(t, http.StatusFound, code, path)
		assert.Equal(t, "/login", loc, path)
	}

	code, _, body := app.get("/login")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Please log in to access this page.")
}

func TestLogin(t *testing.T) {
	app := setup(t)

	// Unknown email
	code, loc := app.login(app.client, "nobody@example.com", "x")
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/login", loc)
	_, _, body := app.get("/login")
	assert.Contains(t, body, "nobody@example.com")
	assert.Contains(t, body, "does not exist")

	code, loc, _ = app.get("/")
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/login", loc)

	// Wrong password
	app.login(app.client, godEmail, "wrong")
	_, _, body = app.get("/login")
	assert.Contains(t, body, "Incorrect password. Please try again.")

	code, loc = app.login(app.client, godEmail, godPassword)
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/", loc)

	code, _, body = app.get("/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, godEmail)

	// Logged in users skip the login page
	code, loc, _ = app.get("/login")
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/", loc)

	code, loc, _ = app.get("/logout")
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/login", loc)

	code, loc, _ = app.get("/")
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/login", loc)
}

func TestSearch(t *testing.T) {
	app := setup(t)
	app.login(app.client, godEmail, godPassword)

	code, _, body := app.get("/search")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `name="Min weight"`)

	code, _, body = app.post("/search", url.Values{"Min weight": {"100"}, "Max weight": {""}})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Glucose")
	assert.Contains(t, body, "180.1559")

	_, _, body = app.post("/search", url.Values{"Min weight": {"600"}, "Max weight": {"500"}})
	assert.Contains(t, body, "Minimum weight cannot be greater than maximum weight.")
	assert.NotContains(t, body, "Glucose")

	_, _, body = app.post("/search", url.Values{"Min weight": {""}, "Max weight": {""}})
	assert.Contains(t, body, "Please select at least one attribute")

	_, _, body = app.post("/search", url.Values{"Min weight": {"0 OR 1=1"}})
	assert.Contains(t, body, "must be a number")

	_, _, body = app.post("/search", url.Values{"Min weight": {"1000"}})
	assert.Contains(t, body, "No results found. Please try again.")

	code, _, body = app.get("/metabolites/HMDB0000122")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Hexoses")

	code, _, _ = app.get("/metabolites/HMDB0000404")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUsersRequireAdmin(t *testing.T) {
	app := setup(t)
	user, err := model.NewUser("reader@example.com", "pw", model.RoleUser)
	require.NoError(t, err)
	require.NoError(t, app.store.Users().Upsert(context.Background(), user))

	app.login(app.client, "reader@example.com", "pw")

	for _, path := range []string{"/users", "/add_user"} {
		code, loc, _ := app.get(path)
		assert.Equal(t, http.StatusFound, code, path)
		assert.Equal(t, "/", loc, path)
	}
	code, loc, _ := app.post("/users", url.Values{"delete": {"True"}, "user_id": {godEmail}})
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/", loc)

	_, _, body := app.get("/")
	assert.Contains(t, body, "You do not have permission to access this page.")

	_, err = app.store.Users().GetByID(context.Background(), godEmail)
	assert.NoError(t, err)
}

func TestUserAdministration(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	app.login(app.client, godEmail, godPassword)

	code, _, body := app.get("/users")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, godEmail)

	// Add
	_, _, body = app.post("/add_user", url.Values{"email": {"ann@example.com"}, "password": {"ann-pw"}, "role": {model.RoleAdmin}})
	assert.Contains(t, body, "added to database")
	ann, err := app.store.Users().GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, ann.Role)
	assert.True(t, ann.CheckPassword("ann-pw"))

	_, _, body = app.post("/add_user", url.Values{"email": {"ann@example.com"}, "password": {"x"}, "role": {model.RoleUser}})
	assert.Contains(t, body, "email address already exists.")

	_, _, body = app.post("/add_user", url.Values{"email": {"long@example.com"}, "password": {strings.Repeat("a", 73)}, "role": {model.RoleUser}})
	assert.Contains(t, body, "password must be at most 72 bytes.")
	assert.NotContains(t, body, "Something went wrong")

	// Self deletion
	_, _, body = app.post("/users", url.Values{"delete": {"True"}, "user_id": {godEmail}})
	assert.Contains(t, body, "You cannot delete yourself.")

	// Another admin cannot touch the god user
	annClient := newClient(t)
	app.login(annClient, "ann@example.com", "ann-pw")
	_, _, body = app.do(annClient, http.MethodPost, "/users", url.Values{"delete": {"True"}, "user_id": {godEmail}})
	assert.Contains(t, body, "You cannot delete the God user.")
	_, _, body = app.do(annClient, http.MethodPost, "/users", url.Values{"delete": {"False"}, "user_id": {godEmail}, "role_" + godEmail: {model.RoleUser}})
	assert.Contains(t, body, "You cannot update the God user.")
	god, err := app.store.Users().GetByID(ctx, godEmail)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, god.Role)

	// Role update
	_, _, body = app.post("/users", url.Values{"delete": {"False"}, "user_id": {"ann@example.com"}, "role_ann@example.com": {model.RoleUser}})
	assert.Contains(t, body, "role updated to")
	ann, err = app.store.Users().GetByID(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, ann.Role)

	// The demotion applies to ann's next request
	code, loc, _ := app.do(annClient, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/", loc)

	// Delete
	_, _, body = app.post("/users", url.Values{"delete": {"True"}, "user_id": {"ann@example.com"}})
	assert.Contains(t, body, "Deleted user")
	_, err = app.store.Users().GetByID(ctx, "ann@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)

	// A deleted user's session is dropped
	code, loc, _ = app.do(annClient, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, code)
	assert.Equal(t, "/login", loc)
}

func TestHealthAndNotFound(t *testing.T) {
	app := setup(t)

	code, _, body := app.get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	var msg struct {
		Success bool `json:"success"`
		Obj     struct {
			Database string `json:"database"`
		} `json:"obj"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &msg))
	assert.True(t, msg.Success)
	assert.Equal(t, "sqlite", msg.Obj.Database)

	code, _, body = app.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body, "Page not found")

	code, _, body = app.get("/assets/css/style.css")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, ".menu")
}
