package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/code-resources/internal/auth"
	"github.com/sakif/code-resources/internal/catalog"
	"github.com/sakif/code-resources/internal/executor"
	"github.com/sakif/code-resources/internal/handler"
	"github.com/sakif/code-resources/internal/model"
	sqliteRepo "github.com/sakif/code-resources/internal/repository/sqlite"
	"github.com/sakif/code-resources/internal/search"
	"github.com/sakif/code-resources/internal/service"
	"github.com/sakif/code-resources/internal/validation"
)

const testSecret = "handler-test-secret-0123456789"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv wires the real services to an in-memory database.
type testEnv struct {
	db       *sqliteRepo.DB
	store    *catalog.Store
	search   *service.SearchService
	snippets *service.SnippetService
	tokens   *auth.TokenService
	router   chi.Router

	react *model.Category
	vue   *model.Category
	hooks *model.Resource
}

func newTestEnv(t *testing.T, exec executor.Executor) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := discardLogger()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{db: db}

	env.react = &model.Category{Name: "React", Slug: "react"}
	env.vue = &model.Category{Name: "Vue", Slug: "vue"}
	require.NoError(t, db.UpsertCategory(ctx, env.react))
	require.NoError(t, db.UpsertCategory(ctx, env.vue))

	now := time.Now().UTC()
	env.hooks = &model.Resource{
		Title:       "React Hooks",
		Description: "A guide to hooks",
		URL:         "https://example.com/hooks",
		CategoryID:  env.react.ID,
		Tags:        model.Tags{"react", "hooks"},
		Featured:    true,
		DateAdded:   now,
	}
	require.NoError(t, db.UpsertResource(ctx, env.hooks))
	require.NoError(t, db.UpsertResource(ctx, &model.Resource{
		Title:      "Vue Basics",
		URL:        "https://example.com/vue",
		CategoryID: env.vue.ID,
		Tags:       model.Tags{"vue"},
		DateAdded:  now.Add(-time.Hour),
	}))

	env.store = catalog.NewStore(db, 10*time.Millisecond, logger)
	t.Cleanup(env.store.Close)
	require.NoError(t, env.store.Refresh(ctx))

	index, err := search.NewIndex(logger)
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })
	env.search = service.NewSearchService(index, env.store, db, 10*time.Millisecond, logger)
	t.Cleanup(env.search.Close)
	require.NoError(t, env.search.Rebuild(ctx))

	env.tokens, err = auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	validate := validation.New()
	catalogSvc := service.NewCatalogService(env.store, db, logger)
	env.snippets = service.NewSnippetService(db, logger)
	authSvc := service.NewAuthService(db, env.tokens, auth.NewPasswordServiceWithCost(4), validate, logger)

	catalogH := handler.NewCatalogHandler(catalogSvc, logger)
	searchH := handler.NewSearchHandler(env.search, logger)
	snippetH := handler.NewSnippetHandler(env.snippets, logger)
	formH := handler.NewFormHandler(
		service.NewNewsletterService(db, validate, logger),
		service.NewContactService(db, validate, logger),
		logger,
	)
	authH := handler.NewAuthHandler(authSvc, nil, env.tokens.TTL(), false, logger)
	execH := handler.NewExecuteHandler(exec, env.snippets, logger)
	pageH, err := handler.NewPageHandler(catalogSvc, logger)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/", pageH.HandleHome)
	r.Get("/about", pageH.HandleStatic("about"))
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authH.HandleSignUp)
		r.Post("/login", authH.HandleLogin)
		r.Post("/logout", authH.HandleLogout)
	})
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.OptionalAuth(env.tokens))
		r.Get("/categories", catalogH.HandleListCategories)
		r.Get("/categories/{slug}", catalogH.HandleGetCategory)
		r.Get("/resources", catalogH.HandleListResources)
		r.Get("/resources/{id}", catalogH.HandleGetResource)
		r.Post("/resources/{id}/view", catalogH.HandleRecordView)
		r.Post("/resources/{id}/click", catalogH.HandleRecordClick)
		r.Get("/search", searchH.HandleSearch)
		r.Get("/snippets", snippetH.HandleList)
		r.Get("/snippets/{id}", snippetH.HandleGetByID)
		r.Post("/snippets/{id}/run", execH.HandleRunSnippet)
		r.Post("/execute", execH.HandleExecute)
		r.Post("/newsletter", formH.HandleSubscribe)
		r.Delete("/newsletter/{token}", formH.HandleUnsubscribe)
		r.Post("/contact", formH.HandleContact)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(env.tokens))
			r.Post("/snippets", snippetH.HandleCreate)
			r.Put("/snippets/{id}", snippetH.HandleUpdate)
			r.Delete("/snippets/{id}", snippetH.HandleDelete)
			r.Get("/me", authH.HandleMe)
		})
	})
	env.router = r

	return env
}

// do sends a request through the router. token, when set, is sent as the
// session cookie.
func (env *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// tokenFor returns a session token for a freshly created user.
func (env *testEnv) tokenFor(t *testing.T, email string) (string, string) {
	t.Helper()
	user := &model.User{Email: email, Name: email}
	require.NoError(t, env.db.CreateUser(context.Background(), user))
	token, err := env.tokens.Generate(user.ID)
	require.NoError(t, err)
	return user.ID, token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
