package treinos

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"treinorun-backend/internal/logger"
	"treinorun-backend/internal/service"
	"treinorun-backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	plan string
	err  error
}

func (g *fakeGenerator) Generate(ctx context.Context, req service.PlanRequest) (string, error) {
	return g.plan, g.err
}

func newTestRouter(t *testing.T, gen *fakeGenerator) (*gin.Engine, *testutil.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewMemoryStore()
	h := NewHandler(service.NewEntitlements(store, logger.NewNop()), gen, logger.NewNop())

	r := gin.New()
	r.POST("/api/treinos", h.Create)
	return r, store
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/treinos", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePlanHappyPath(t *testing.T) {
	r, store := newTestRouter(t, &fakeGenerator{plan: "Semana 1: corrida leve"})

	w := post(r, `{"email":"a@x.com","tier":"gratuito","goal":"10k","days_per_week":3}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"plan":"Semana 1: corrida leve"}`, w.Body.String())

	user, err := store.Users().ByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotNil(t, user.LastGenerationAt)
}

func TestCreatePlanDeniedByEntitlement(t *testing.T) {
	r, _ := newTestRouter(t, &fakeGenerator{plan: "x"})

	// Second free-tier request right after the first must be denied.
	assert.Equal(t, http.StatusOK, post(r, `{"email":"a@x.com","tier":"gratuito"}`).Code)
	assert.Equal(t, http.StatusForbidden, post(r, `{"email":"a@x.com","tier":"gratuito"}`).Code)
}

func TestCreatePlanGeneratorFailureConsumesNoAllowance(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	r, store := newTestRouter(t, gen)

	assert.Equal(t, http.StatusBadGateway, post(r, `{"email":"a@x.com","tier":"gratuito"}`).Code)

	// Nothing recorded: the next attempt is still permitted.
	_, err := store.Users().ByEmail(context.Background(), "a@x.com")
	assert.Error(t, err)

	gen.err = nil
	gen.plan = "ok"
	assert.Equal(t, http.StatusOK, post(r, `{"email":"a@x.com","tier":"gratuito"}`).Code)
}

func TestCreatePlanValidation(t *testing.T) {
	r, _ := newTestRouter(t, &fakeGenerator{plan: "x"})

	assert.Equal(t, http.StatusBadRequest, post(r, `{"tier":"gratuito"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, `{"email":"not-an-email","tier":"gratuito"}`).Code)
	assert.Equal(t, http.StatusForbidden, post(r, `{"email":"a@x.com","tier":"vitalicio"}`).Code)
}
