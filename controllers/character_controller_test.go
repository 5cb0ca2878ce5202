package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gsinghjay/gpt-character-gen/config"
	"github.com/gsinghjay/gpt-character-gen/controllers"
	"github.com/gsinghjay/gpt-character-gen/models"
	"github.com/gsinghjay/gpt-character-gen/routes"
	"github.com/gsinghjay/gpt-character-gen/services"
	"github.com/gsinghjay/gpt-character-gen/storage"
)

const testSecret = "test-secret"

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

type testEnv struct {
	router    *gin.Engine
	store     *storage.JSONStore
	staticDir string
	// providerFail flips the fake provider into error mode.
	providerFail bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{staticDir: t.TempDir()}

	var provider *httptest.Server
	provider = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/images/generations":
			if env.providerFail {
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"message": "boom"},
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{{"url": provider.URL + "/result.png"}},
			})
		case "/result.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(provider.Close)

	nop := zap.NewNop().Sugar()
	env.store = storage.NewJSONStore(filepath.Join(t.TempDir(), "characters_db.json"), nop)

	images, err := services.NewImageStore(env.staticDir)
	require.NoError(t, err)
	client := services.NewOpenAIImageClient(provider.URL+"/v1", "sk-test", "dall-e-3", "1024x1024", "standard", 5*time.Second)
	gen := services.NewGenerator(client, images, 5*time.Second, nop)

	ctrl := controllers.NewCharacterController(env.store, gen, images, nop)
	cfg := config.AppConfig{
		APIKey:         testSecret,
		StaticDir:      env.staticDir,
		GinMode:        "test",
		AllowedOrigins: []string{"*"},
	}
	env.router = routes.SetupRouter(cfg, ctrl)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, withKey bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if withKey {
		req.Header.Set("X-API-Key", testSecret)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createCharacter(t *testing.T, body string) models.Character {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/characters", body, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c models.Character
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	return c
}

func TestProtectedRoutesRejectMissingOrWrongKey(t *testing.T) {
	env := newTestEnv(t)

	// Valid payload, no key.
	w := env.do(t, http.MethodPost, "/api/characters", `{"description":"A tall elf archer"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/characters", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/characters", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays public.
	w = env.do(t, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateCharacterWithoutName(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/characters", `{"description":"A tall elf archer with silver hair"}`, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.NotContains(t, raw, "name")

	var c models.Character
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "A tall elf archer with silver hair", c.Description)
	assert.True(t, strings.HasPrefix(c.BaseImagePath, "images/"+c.ID+"/"))
	assert.Empty(t, c.Variations)
	assert.True(t, c.UpdatedAt.Equal(c.CreatedAt))

	// The PNG landed under the static root at the advertised path.
	_, err := os.Stat(filepath.Join(env.staticDir, filepath.FromSlash(c.BaseImagePath)))
	require.NoError(t, err)
}

func TestCreateCharacterValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/characters", `{"name":"Nameless"}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/characters", `{"description":"   "}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateFailureLeavesNoOrphanRecord(t *testing.T) {
	env := newTestEnv(t)
	env.providerFail = true

	w := env.do(t, http.MethodPost, "/api/characters", `{"description":"doomed"}`, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = env.do(t, http.MethodGet, "/api/characters", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Character
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Empty(t, all)
}

func TestListNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	first := env.createCharacter(t, `{"description":"first"}`)
	time.Sleep(5 * time.Millisecond)
	second := env.createCharacter(t, `{"description":"second"}`)

	w := env.do(t, http.MethodGet, "/api/characters", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Character
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

func TestGetCharacter(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCharacter(t, `{"description":"desc","name":"Anya"}`)

	w := env.do(t, http.MethodGet, "/api/characters/"+c.ID, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Character
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Anya", got.Name)

	w = env.do(t, http.MethodGet, "/api/characters/unknown-id", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddVariation(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCharacter(t, `{"description":"A tall elf archer"}`)

	w := env.do(t, http.MethodPost, "/api/characters/"+c.ID+"/variations?pose=kneeling", "", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var raw struct {
		Variations []map[string]json.RawMessage `json:"variations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw.Variations, 1)
	assert.NotContains(t, raw.Variations[0], "expression")
	assert.NotContains(t, raw.Variations[0], "setting")

	var updated models.Character
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "kneeling", updated.Variations[0].Pose)
	assert.True(t, strings.HasPrefix(updated.Variations[0].ImagePath, "images/"+c.ID+"/variations/"))
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestAddVariationRequiresAtLeastOneAttribute(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCharacter(t, `{"description":"desc"}`)

	w := env.do(t, http.MethodPost, "/api/characters/"+c.ID+"/variations", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Stored state must be untouched.
	w = env.do(t, http.MethodGet, "/api/characters/"+c.ID, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Character
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.Variations)
}

func TestAddVariationUnknownCharacter(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/characters/missing/variations?pose=sitting", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddVariationFailureLeavesRecordUnchanged(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCharacter(t, `{"description":"desc"}`)

	env.providerFail = true
	w := env.do(t, http.MethodPost, "/api/characters/"+c.ID+"/variations?pose=running", "", true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	env.providerFail = false
	w = env.do(t, http.MethodGet, "/api/characters/"+c.ID, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Character
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.Variations)
}

func TestDeleteCharacterRemovesRecordAndImages(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCharacter(t, `{"description":"desc"}`)

	imageDir := filepath.Join(env.staticDir, "images", c.ID)
	_, err := os.Stat(imageDir)
	require.NoError(t, err)

	w := env.do(t, http.MethodDelete, "/api/characters/"+c.ID, "", true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/characters/"+c.ID, "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, err = os.Stat(imageDir)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteUnknownCharacter(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodDelete, "/api/characters/missing", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
