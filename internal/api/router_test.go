package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/core/budget"
	"meal-planner/internal/core/corpus"
	"meal-planner/internal/core/product"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/core/repository"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

const testHeader = "RCP_SNO,RCP_TTL,CKG_NM,RGTR_ID,RGTR_NM,INQ_CNT,RCMM_CNT,SRAP_CNT,CKG_MTH_ACTO_NM,CKG_STA_ACTO_NM,CKG_MTRL_ACTO_NM,CKG_KND_ACTO_NM,CKG_IPDC,CKG_MTRL_CN,CKG_INBUN_NM,CKG_DODF_NM,CKG_TIME_NM,FIRST_REG_DT,RCP_IMG_URL"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	common.InitNopLogger()
	os.Exit(m.Run())
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	data := strings.Join([]string{
		testHeader,
		"1001,닭가슴살 샐러드,닭가슴살샐러드,u1,요리사,1000,5,50,무침,다이어트,채소류,샐러드,다이어트 샐러드,[재료] 닭가슴살 100g| 양상추 50g,1인분,아무나,10분이내,20231201,",
		"1002,계란밥,계란밥,u2,,500,2,20,볶음,초스피드,달걀류,밥/죽/떡,간단한 계란밥,[재료] 계란2개| 밥210g,1인분,아무나,10분이내,20231202,",
		"1003,미역국,미역국,u3,,300,1,3,끓이기,일상,해물류,국/탕,건강한 미역국,[재료] 미역 20g| 두부 100g,2인분,초급,30분이내,20231203,",
	}, "\n")

	catalog, err := product.LoadEmbedded()
	require.NoError(t, err)

	loader := corpus.NewLoader(corpus.StaticSource(data), corpus.Options{}, time.Minute)
	store := repository.NewMemoryStore(repository.MemoryOptions{MaxSize: 10, TTL: time.Minute})
	t.Cleanup(func() { store.Close() })
	repo := repository.New(loader, recipe.NewTransformer(product.NewMatcher(catalog)), store, repository.Options{})

	cfg := config.Default()
	cfg.App.Debug = false
	q := queue.NewManager(cfg.Queue)
	t.Cleanup(q.Close)

	router, err := SetupRouter(cfg, Services{
		Repository:  repo,
		Recommender: budget.NewRecommender(repo, budget.Options{Catalog: catalog}),
		Fast:        budget.NewFastEngine(repo, 0),
		Queue:       q,
	})
	require.NoError(t, err)
	return router
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestSetupRouterRequiresServices(t *testing.T) {
	_, err := SetupRouter(config.Default(), Services{})
	assert.Error(t, err)
}

func TestHealthEndpoints(t *testing.T) {
	r := testRouter(t)

	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/live", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/ready", "").Code)

	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/recipes/goal/weight_loss", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ready", "").Code)
}

func TestRecipeEndpoints(t *testing.T) {
	r := testRouter(t)

	w := do(r, http.MethodGet, "/api/v1/recipes/goal/weight_loss?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count   int             `json:"count"`
		Recipes []common.Recipe `json:"recipes"`
	}
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "mankae-1001", list.Recipes[0].ID)

	w = do(r, http.MethodGet, "/api/v1/recipes/goal/bulk", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp common.ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, "INVALID_GOAL", errResp.Code)

	w = do(r, http.MethodGet, "/api/v1/recipes/search?q="+url.QueryEscape("계란"), "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/recipes/popular", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/recipes/statistics", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/recipes/mankae-1002", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/recipes/mankae-9999", "").Code)

	w = do(r, http.MethodGet, "/api/v1/recipes/1002/cost", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cost struct {
		MonthlyFrequency int `json:"monthly_frequency"`
		Monthly          int `json:"monthly_cost"`
		PerServing       int `json:"total_cost_per_recipe"`
	}
	decode(t, w, &cost)
	assert.Equal(t, budget.DefaultMonthlyFrequency, cost.MonthlyFrequency)
	assert.Equal(t, cost.PerServing*cost.MonthlyFrequency, cost.Monthly)
}

func TestIngredientParseEndpoint(t *testing.T) {
	r := testRouter(t)

	w := do(r, http.MethodPost, "/api/v1/ingredients/parse", `{"text":"[재료] 계란2개| 밥210g"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Nutrition struct {
			Calories float64 `json:"calories"`
		} `json:"nutrition"`
		Products []common.RecipeIngredient `json:"products"`
	}
	decode(t, w, &resp)
	assert.InDelta(t, 428, resp.Nutrition.Calories, 0.001)
	assert.Len(t, resp.Products, 2)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/v1/ingredients/parse", `{}`).Code)
}

func TestPlanEndpoints(t *testing.T) {
	r := testRouter(t)
	profile := `{"gender":"male","age":28,"height":178,"weight":70,"activity_level":"moderately_active","goal":"muscle_gain"}`

	w := do(r, http.MethodPost, "/api/v1/nutrition/targets", profile)
	require.Equal(t, http.StatusOK, w.Code)
	var targets struct {
		Targets budget.NutritionTargets `json:"targets"`
	}
	decode(t, w, &targets)
	assert.Greater(t, targets.Targets.TargetCalories, 0)

	w = do(r, http.MethodPost, "/api/v1/recommendations", `{"profile":`+profile+`,"monthly_budget":300000}`)
	require.Equal(t, http.StatusOK, w.Code)
	var rec budget.Recommendation
	decode(t, w, &rec)
	assert.NotEmpty(t, rec.ID)
	assert.NotEmpty(t, rec.Recipes)
	assert.NotEmpty(t, rec.Products)

	w = do(r, http.MethodPost, "/api/v1/recommendations", `{"profile":`+profile+`,"monthly_budget":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/recommendations/personalized",
		`{"profile":`+profile+`,"monthly_budget":300000,"preferences":{"cooking_time":"quick"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var personalized budget.Personalized
	decode(t, w, &personalized)
	assert.NotEmpty(t, personalized.MealType)
	assert.NotEmpty(t, personalized.Products)
	for _, rc := range personalized.Recipes {
		assert.Equal(t, personalized.MealType, rc.MealType)
		assert.LessOrEqual(t, rc.CookingTime, 15)
	}

	w = do(r, http.MethodPost, "/api/v1/recommendations/fast", `{"goal":"weight_loss","tdee":2000,"monthly_budget":300000}`)
	require.Equal(t, http.StatusOK, w.Code)
	var fast budget.FastResult
	decode(t, w, &fast)
	assert.NotEmpty(t, fast.Recipes)

	w = do(r, http.MethodPost, "/api/v1/recommendations/fast", `{"goal":"bulk","tdee":2000,"monthly_budget":300000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCacheEndpoints(t *testing.T) {
	r := testRouter(t)

	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/recipes/goal/muscle_gain", "").Code)

	w := do(r, http.MethodGet, "/api/v1/cache", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Repository repository.CacheStatus `json:"repository"`
	}
	decode(t, w, &status)
	assert.Equal(t, repository.StateReady, status.Repository.State)
	assert.NotEmpty(t, status.Repository.Entries)

	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/api/v1/cache", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/ready", "").Code)
}

func TestUnknownRoute(t *testing.T) {
	r := testRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, common.ErrCodeNotFound, body.Code)
}
