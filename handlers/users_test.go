package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crudusers/users-service/internal/models"
	"github.com/crudusers/users-service/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newUsersRouter(repo users.Repository, strict bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	NewUserHandler(users.NewService(repo), strict).Register(g.Group("/"))
	return g
}

func do(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	g.ServeHTTP(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createUser(t *testing.T, g *gin.Engine, body string) map[string]interface{} {
	t.Helper()
	w := do(g, http.MethodPost, "/users", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeObject(t, w)
}

func listIDs(t *testing.T, g *gin.Engine) map[string]bool {
	t.Helper()
	w := do(g, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	ids := map[string]bool{}
	for _, it := range list {
		if id, ok := it["id"].(string); ok {
			ids[id] = true
		}
	}
	return ids
}

func TestUsers_CreateEchoesInputWithFreshID(t *testing.T) {
	g := newUsersRouter(users.NewMemoryRepository(), false)

	a := createUser(t, g, `{"name":"Ann","email":"ann@example.com","age":30}`)
	assert.Equal(t, "Ann", a["name"])
	assert.Equal(t, "ann@example.com", a["email"])
	assert.Equal(t, 30.0, a["age"])
	idA, _ := a["id"].(string)
	require.Len(t, idA, 24)

	b := createUser(t, g, `{"name":"Bob","email":"bob@example.com"}`)
	assert.NotEqual(t, idA, b["id"])
	_, hasAge := b["age"]
	assert.False(t, hasAge, "age should be omitted when not supplied")
}

func TestUsers_CreateMissingRequiredFields(t *testing.T) {
	g := newUsersRouter(users.NewMemoryRepository(), false)

	cases := map[string]string{
		"missing name":  `{"email":"x@example.com"}`,
		"missing email": `{"name":"X"}`,
		"empty name":    `{"name":"","email":"x@example.com"}`,
		"null email":    `{"name":"X","email":null}`,
		"empty body":    ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(g, http.MethodPost, "/users", body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			msg, _ := decodeObject(t, w)["message"].(string)
			assert.NotEmpty(t, msg)
			assert.Contains(t, msg, "users validation failed")
		})
	}

	w := do(g, http.MethodPost, "/users", `{}`)
	assert.Equal(t, "users validation failed: name: Path `name` is required., email: Path `email` is required.", decodeObject(t, w)["message"])
}

func TestUsers_CreateCoercesAndRejectsBadTypes(t *testing.T) {
	g := newUsersRouter(users.NewMemoryRepository(), false)

	u := createUser(t, g, `{"name":42,"email":"n@example.com","age":"31"}`)
	assert.Equal(t, "42", u["name"])
	assert.Equal(t, 31.0, u["age"])

	w := do(g, http.MethodPost, "/users", `{"name":"N","email":"n@example.com","age":"old"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `users validation failed: age: Cast to Number failed for value "old" (type string) at path "age"`, decodeObject(t, w)["message"])

	w = do(g, http.MethodPost, "/users", `{"name":"N","email":"n@example.com"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsers_ListContainsCreated(t *testing.T) {
	g := newUsersRouter(users.NewMemoryRepository(), false)
	assert.Equal(t, "[]", strings.TrimSpace(do(g, http.MethodGet, "/users", "").Body.String()))

	want := []string{}
	for _, body := range []string{
		`{"name":"a","email":"a@example.com"}`,
		`{"name":"b","email":"b@example.com"}`,
		`{"name":"c","email":"c@example.com","age":7}`,
	} {
		want = append(want, createUser(t, g, body)["id"].(string))
	}
	ids := listIDs(t, g)
	for _, id := range want {
		assert.True(t, ids[id], "created user %s should appear in list", id)
	}
}

func TestUsers_UpdatePartialKeepsOmittedFields(t *testing.T) {
	g := newUsersRouter(users.NewMemoryRepository(), false)
	u := createUser(t, g, `{"name":"Old","email":"old@example.com","age":40}`)
	id := u["id"].(string)

	w := do(g, http.MethodPut, "/users/"+id, `{"name":"Alice"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeObject(t, w)
	assert.Equal(t, "Alice", got["name"])
	assert.Equal(t, "old@example.com", got["email"])
	assert.Equal(t, 40.0, got["age"])
	assert.Equal(t, id, got["id"])
}

func TestUsers_UpdateIgnoresFalsyValues(t *testing.T) {
	g := newUsersRouter(users.NewMemoryRepository(), false)
	u := createUser(t, g, `{"name":"Zed","email":"zed@example.com","age":25}`)
	id := u["id"].(string)

	w := do(g, http.MethodPut, "/users/"+id, `{"age":0,"name":"","email":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeObject(t, w)
	assert.Equal(t, 25.0, got["age"])
	assert.Equal(t, "Zed", got["name"])
	assert.Equal(t, "zed@example.com", got["email"])

	// the string "0" is truthy and is cast to the number 0
	w = do(g, http.MethodPut, "/users/"+id, `{"age":"0"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decodeObject(t, w)["age"])
}

func TestUsers_UpdateCastFailureIsReportedWith200(t *testing.T) {
	g := newUsersRouter(users.NewMemoryRepository(), false)
	id := createUser(t, g, `{"name":"C","email":"c@example.com","age":3}`)["id"].(string)

	w := do(g, http.MethodPut, "/users/"+id, `{"age":"three"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeObject(t, w)["message"], "Cast to Number failed")

	gs := newUsersRouter(users.NewMemoryRepository(), true)
	id = createUser(t, gs, `{"name":"C","email":"c@example.com","age":3}`)["id"].(string)
	w = do(gs, http.MethodPut, "/users/"+id, `{"age":"three"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsers_UnknownIDIs404(t *testing.T) {
	g := newUsersRouter(users.NewMemoryRepository(), false)
	missing := primitive.NewObjectID().Hex()

	w := do(g, http.MethodPut, "/users/"+missing, `{"name":"x"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user not found", decodeObject(t, w)["message"])

	w = do(g, http.MethodDelete, "/users/"+missing, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user not found", decodeObject(t, w)["message"])
}

func TestUsers_MalformedIDIsStoreErrorWith200(t *testing.T) {
	g := newUsersRouter(users.NewMemoryRepository(), false)

	w := do(g, http.MethodDelete, "/users/not-an-id", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `Cast to ObjectId failed for value "not-an-id" (type string) at path "_id" for model "users"`, decodeObject(t, w)["message"])

	w = do(g, http.MethodPut, "/users/not-an-id", `{"name":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeObject(t, w)["message"], "Cast to ObjectId failed")
}

func TestUsers_DeleteThenListExcludes(t *testing.T) {
	g := newUsersRouter(users.NewMemoryRepository(), false)
	keep := createUser(t, g, `{"name":"keep","email":"k@example.com"}`)["id"].(string)
	gone := createUser(t, g, `{"name":"gone","email":"g@example.com"}`)["id"].(string)

	w := do(g, http.MethodDelete, "/users/"+gone, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User deleted", decodeObject(t, w)["message"])

	ids := listIDs(t, g)
	assert.False(t, ids[gone], "deleted user should not appear in list")
	assert.True(t, ids[keep])
}

// brokenRepo fails every call, standing in for a lost store connection.
type brokenRepo struct{ err error }

func (b brokenRepo) List(ctx context.Context) ([]*models.User, error) { return nil, b.err }
func (b brokenRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return nil, b.err
}
func (b brokenRepo) Insert(ctx context.Context, u *models.User) error          { return b.err }
func (b brokenRepo) Save(ctx context.Context, u *models.User) error            { return b.err }
func (b brokenRepo) Delete(ctx context.Context, id primitive.ObjectID) error { return b.err }

func TestUsers_StoreFailureStatuses(t *testing.T) {
	repo := brokenRepo{err: errors.New("connection refused")}
	id := primitive.NewObjectID().Hex()
	valid := `{"name":"a","email":"a@example.com"}`

	legacy := newUsersRouter(repo, false)
	strict := newUsersRouter(repo, true)

	cases := []struct {
		method, path, body string
		legacy, strict     int
	}{
		{http.MethodGet, "/users", "", http.StatusOK, http.StatusInternalServerError},
		{http.MethodPost, "/users", valid, http.StatusBadRequest, http.StatusInternalServerError},
		{http.MethodPut, "/users/" + id, valid, http.StatusOK, http.StatusInternalServerError},
		{http.MethodDelete, "/users/" + id, "", http.StatusOK, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := do(legacy, tc.method, tc.path, tc.body)
		assert.Equal(t, tc.legacy, w.Code, "%s %s legacy", tc.method, tc.path)
		assert.Equal(t, "connection refused", decodeObject(t, w)["message"])

		w = do(strict, tc.method, tc.path, tc.body)
		assert.Equal(t, tc.strict, w.Code, "%s %s strict", tc.method, tc.path)
	}
}
