package recipe

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/budget"
	"meal-planner/internal/core/repository"
	"meal-planner/internal/pkg/common"
)

// Handler 食譜查詢處理器
type Handler struct {
	repo  *repository.Repository
	costs *budget.CostEstimator
}

// NewHandler 創建食譜處理器
func NewHandler(repo *repository.Repository, costs *budget.CostEstimator) *Handler {
	return &Handler{repo: repo, costs: costs}
}

// ListResponse 食譜列表
type ListResponse struct {
	Count   int             `json:"count"`
	Recipes []common.Recipe `json:"recipes"`
}

func list(recipes []common.Recipe) ListResponse {
	if recipes == nil {
		recipes = []common.Recipe{}
	}
	return ListResponse{Count: len(recipes), Recipes: recipes}
}

// ByGoal 依飲食目標取得食譜
func (h *Handler) ByGoal(c *gin.Context) {
	goal, err := common.ParseGoal(c.Param("goal"))
	if err != nil {
		handlers.Error(c, err)
		return
	}

	recipes, err := h.repo.GetRecipesByGoal(c.Request.Context(), goal, handlers.QueryInt(c, "limit", 0))
	if err != nil {
		handlers.Error(c, err)
		return
	}

	common.LogInfo("目標食譜查詢",
		zap.String("goal", string(goal)),
		zap.Int("count", len(recipes)),
		zap.String("request_id", handlers.RequestID(c)),
	)
	c.JSON(http.StatusOK, list(recipes))
}

// Popular 熱門食譜
func (h *Handler) Popular(c *gin.Context) {
	limit := handlers.QueryInt(c, "limit", repository.DefaultPopularLimit)
	recipes, err := h.repo.GetPopularRecipes(c.Request.Context(), limit)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, list(recipes))
}

// Search 關鍵字搜尋
func (h *Handler) Search(c *gin.Context) {
	limit := handlers.QueryInt(c, "limit", repository.DefaultSearchLimit)
	recipes, err := h.repo.SearchRecipes(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, list(recipes))
}

// Statistics 語料統計
func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.repo.GetStatistics(c.Request.Context())
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ByID 以 ID 查詢單一食譜
func (h *Handler) ByID(c *gin.Context) {
	r, err := h.repo.FindRecipeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// CostResponse 單一食譜的費用分析
type CostResponse struct {
	budget.RecipeCost
	MonthlyFrequency int    `json:"monthly_frequency"`
	Summary          string `json:"summary"`
}

// Cost 計算食譜每次與每月費用
func (h *Handler) Cost(c *gin.Context) {
	r, err := h.repo.FindRecipeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}

	cost := h.costs.Estimate(r)
	c.JSON(http.StatusOK, CostResponse{
		RecipeCost:       cost,
		MonthlyFrequency: h.costs.Frequency(),
		Summary: fmt.Sprintf("월 %d회 조리 시 %s원 (1회 %s원)",
			h.costs.Frequency(), budget.FormatWon(cost.Monthly), budget.FormatWon(cost.PerServing)),
	})
}
