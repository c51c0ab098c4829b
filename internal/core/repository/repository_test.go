package repository

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/core/corpus"
	"meal-planner/internal/core/product"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"
)

const testHeader = "RCP_SNO,RCP_TTL,CKG_NM,RGTR_ID,RGTR_NM,INQ_CNT,RCMM_CNT,SRAP_CNT,CKG_MTH_ACTO_NM,CKG_STA_ACTO_NM,CKG_MTRL_ACTO_NM,CKG_KND_ACTO_NM,CKG_IPDC,CKG_MTRL_CN,CKG_INBUN_NM,CKG_DODF_NM,CKG_TIME_NM,FIRST_REG_DT,RCP_IMG_URL"

func testCorpus() []byte {
	rows := []string{
		testHeader,
		"1001,닭가슴살 샐러드,닭가슴살샐러드,u1,요리사,1000,5,50,무침,다이어트,채소류,샐러드,다이어트 샐러드,[재료] 닭가슴살 100g| 양상추 50g,1인분,아무나,10분이내,20231201,",
		"1002,계란밥,계란밥,u2,,500,2,20,볶음,초스피드,달걀류,밥/죽/떡,간단한 계란밥,[재료] 계란2개| 밥210g,1인분,아무나,10분이내,20231202,",
		"1003,미역국,미역국,u3,,300,1,3,끓이기,일상,해물류,국/탕,건강한 미역국,[재료] 미역 20g| 두부 100g,2인분,초급,30분이내,20231203,",
	}
	return []byte(strings.Join(rows, "\n"))
}

// countingSource 計算下載次數，前 failFirst 次回傳錯誤
type countingSource struct {
	data      []byte
	failFirst int64
	opens     atomic.Int64
}

func (s *countingSource) Name() string {
	return "counting"
}

func (s *countingSource) Open(ctx context.Context) (io.ReadCloser, error) {
	n := s.opens.Add(1)
	if n <= s.failFirst {
		return nil, common.Wrap(common.ErrCorpusFetch, errors.New("network down"))
	}
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func newTestRepository(t *testing.T, src corpus.Source) (*Repository, *MemoryStore) {
	t.Helper()
	catalog, err := product.LoadEmbedded()
	require.NoError(t, err)

	store := NewMemoryStore(MemoryOptions{MaxSize: 10, TTL: time.Minute})
	t.Cleanup(func() { store.Close() })

	loader := corpus.NewLoader(src, corpus.Options{}, time.Minute)
	transformer := recipe.NewTransformer(product.NewMatcher(catalog))
	return New(loader, transformer, store, Options{}), store
}

func ids(recipes []common.Recipe) []string {
	return lo.Map(recipes, func(r common.Recipe, _ int) string { return r.ID })
}

func TestGetRecipesByGoalFiltersAndRanks(t *testing.T) {
	repo, _ := newTestRepository(t, &countingSource{data: testCorpus()})

	recipes, err := repo.GetRecipesByGoal(context.Background(), common.GoalWeightLoss, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"mankae-1001", "mankae-1003"}, ids(recipes))
	for _, r := range recipes {
		assert.True(t, r.Fits(common.GoalWeightLoss))
	}

	muscle, err := repo.GetRecipesByGoal(context.Background(), common.GoalMuscleGain, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"mankae-1001", "mankae-1002", "mankae-1003"}, ids(muscle))
}

func TestGetRecipesByGoalCachesFullList(t *testing.T) {
	src := &countingSource{data: testCorpus()}
	repo, store := newTestRepository(t, src)
	ctx := context.Background()

	first, err := repo.GetRecipesByGoal(ctx, common.GoalMuscleGain, 1)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := repo.GetRecipesByGoal(ctx, common.GoalMuscleGain, 2)
	require.NoError(t, err)
	assert.Len(t, second, 2)

	entry, err := store.Get(ctx, "goal_muscle_gain")
	require.NoError(t, err)
	assert.Len(t, entry.Recipes, 3)
	assert.Equal(t, int64(1), src.opens.Load())
}

func TestGetRecipesByGoalNeverFailsOnFetchError(t *testing.T) {
	src := &countingSource{failFirst: 100}
	repo, _ := newTestRepository(t, src)

	recipes, err := repo.GetRecipesByGoal(context.Background(), common.GoalWeightLoss, 10)
	require.NoError(t, err)
	assert.NotNil(t, recipes)
	assert.Empty(t, recipes)
	// 主要管線一次，備援一次
	assert.Equal(t, int64(2), src.opens.Load())
}

func TestGetRecipesByGoalFallsBackToKeywordSearch(t *testing.T) {
	src := &countingSource{data: testCorpus(), failFirst: 1}
	repo, store := newTestRepository(t, src)
	ctx := context.Background()

	recipes, err := repo.GetRecipesByGoal(ctx, common.GoalWeightLoss, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"mankae-1001"}, ids(recipes))

	// 備援結果不寫入快取
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestClearCacheForcesFreshFetch(t *testing.T) {
	src := &countingSource{data: testCorpus()}
	repo, _ := newTestRepository(t, src)
	ctx := context.Background()

	_, err := repo.GetRecipesByGoal(ctx, common.GoalMaintenance, 0)
	require.NoError(t, err)
	_, err = repo.GetRecipesByGoal(ctx, common.GoalMaintenance, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), src.opens.Load())

	require.NoError(t, repo.ClearCache(ctx))
	assert.Equal(t, StateUninitialized, repo.State())

	recipes, err := repo.GetRecipesByGoal(ctx, common.GoalMaintenance, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, recipes)
	assert.Equal(t, int64(2), src.opens.Load())
}

func TestEmptyCacheEntryIsInvalidated(t *testing.T) {
	src := &countingSource{data: testCorpus()}
	repo, store := newTestRepository(t, src)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "goal_muscle_gain", []common.Recipe{}))

	recipes, err := repo.GetRecipesByGoal(ctx, common.GoalMuscleGain, 0)
	require.NoError(t, err)
	assert.Len(t, recipes, 3)
	assert.Equal(t, int64(1), src.opens.Load())
}

func TestGetRecipesByGoalRejectsUnknownGoal(t *testing.T) {
	repo, _ := newTestRepository(t, &countingSource{data: testCorpus()})

	_, err := repo.GetRecipesByGoal(context.Background(), common.Goal("bulk"), 0)
	assert.ErrorIs(t, err, common.ErrInvalidGoal)
}

func TestGetRecipesByGoalConcurrentCallersShareLoad(t *testing.T) {
	src := &countingSource{data: testCorpus()}
	repo, _ := newTestRepository(t, src)

	var wg sync.WaitGroup
	results := make([][]common.Recipe, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = repo.GetRecipesByGoal(context.Background(), common.GoalMuscleGain, 0)
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Len(t, r, 3)
	}
	assert.Equal(t, int64(1), src.opens.Load())
}

// gateSource 第一次下載在 release 關閉前阻塞
type gateSource struct {
	data    []byte
	entered chan struct{}
	release chan struct{}
	opens   atomic.Int64
}

func newGateSource(data []byte) *gateSource {
	return &gateSource{
		data:    data,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *gateSource) Name() string {
	return "gate"
}

func (s *gateSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.opens.Add(1) == 1 {
		close(s.entered)
		<-s.release
	}
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func TestClearCacheDuringLoadForcesFreshFetch(t *testing.T) {
	src := newGateSource(testCorpus())
	repo, store := newTestRepository(t, src)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		recipes, err := repo.GetRecipesByGoal(ctx, common.GoalWeightLoss, 0)
		assert.NoError(t, err)
		assert.NotEmpty(t, recipes)
	}()

	<-src.entered
	require.NoError(t, repo.ClearCache(ctx))
	close(src.release)
	<-done

	_, err := store.Get(ctx, goalKey(common.GoalWeightLoss))
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	recipes, err := repo.GetRecipesByGoal(ctx, common.GoalWeightLoss, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, recipes)
	assert.Equal(t, int64(2), src.opens.Load())
}

func TestGetRecipesByGoalCancelledReturnsEmpty(t *testing.T) {
	src := newGateSource(testCorpus())
	repo, _ := newTestRepository(t, src)
	defer close(src.release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-src.entered
		cancel()
	}()

	recipes, err := repo.GetRecipesByGoal(ctx, common.GoalWeightLoss, 0)
	require.NoError(t, err)
	assert.Empty(t, recipes)
	assert.NotNil(t, recipes)
}

func TestRepositoryState(t *testing.T) {
	repo, _ := newTestRepository(t, &countingSource{data: testCorpus()})

	assert.Equal(t, StateUninitialized, repo.State())
	require.NoError(t, repo.Load(context.Background()))
	assert.Equal(t, StateReady, repo.State())
}

func TestGetPopularRecipes(t *testing.T) {
	src := &countingSource{data: testCorpus()}
	repo, store := newTestRepository(t, src)
	ctx := context.Background()

	recipes, err := repo.GetPopularRecipes(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"mankae-1001", "mankae-1002"}, ids(recipes))

	_, err = store.Get(ctx, "popular_2")
	assert.NoError(t, err)
}

func TestSearchRecipes(t *testing.T) {
	repo, _ := newTestRepository(t, &countingSource{data: testCorpus()})
	ctx := context.Background()

	recipes, err := repo.SearchRecipes(ctx, "계란", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"mankae-1002"}, ids(recipes))

	empty, err := repo.SearchRecipes(ctx, "  ", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetStatistics(t *testing.T) {
	repo, _ := newTestRepository(t, &countingSource{data: testCorpus()})

	stats, err := repo.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRecipes)
	assert.Equal(t, 600.0, stats.AvgViews)
	assert.Equal(t, 24.3, stats.AvgScraps)
	assert.Equal(t, []CountEntry{
		{Name: "국/탕", Count: 1},
		{Name: "밥/죽/떡", Count: 1},
		{Name: "샐러드", Count: 1},
	}, stats.TopKinds)
	assert.Len(t, stats.TopMethods, 3)
}

func TestFindRecipeByID(t *testing.T) {
	repo, _ := newTestRepository(t, &countingSource{data: testCorpus()})
	ctx := context.Background()

	r, err := repo.FindRecipeByID(ctx, "mankae-1002")
	require.NoError(t, err)
	assert.Equal(t, "계란밥", r.Name)

	r, err = repo.FindRecipeByID(ctx, "1003")
	require.NoError(t, err)
	assert.Equal(t, "mankae-1003", r.ID)

	_, err = repo.FindRecipeByID(ctx, "mankae-9999")
	assert.ErrorIs(t, err, common.ErrRecipeNotFound)
}

func TestCacheStatus(t *testing.T) {
	repo, _ := newTestRepository(t, &countingSource{data: testCorpus()})
	ctx := context.Background()

	_, err := repo.GetRecipesByGoal(ctx, common.GoalWeightLoss, 0)
	require.NoError(t, err)

	status, err := repo.CacheStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateReady, status.State)
	assert.Equal(t, 3, status.Corpus.Records)
	require.Len(t, status.Entries, 1)
	assert.Equal(t, "goal_weight_loss", status.Entries[0].Key)
	assert.Equal(t, 2, status.Entries[0].Size)
	assert.Equal(t, BackendMemory, status.Store.Backend)
}
