package plan

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/budget"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"
)

// Handler 營養目標與預算推薦
type Handler struct {
	recommender *budget.Recommender
	fast        *budget.FastEngine
	calc        nutrition.Calculator
}

// NewHandler 創建處理器
func NewHandler(recommender *budget.Recommender, fast *budget.FastEngine) *Handler {
	return &Handler{recommender: recommender, fast: fast}
}

// TargetsResponse 熱量計算與營養目標
type TargetsResponse struct {
	Calculation nutrition.CalorieCalculation `json:"calculation"`
	Targets     budget.NutritionTargets      `json:"targets"`
	Message     string                       `json:"message"`
}

func (h *Handler) targets(p nutrition.UserProfile) (TargetsResponse, error) {
	calc, err := h.calc.Calculate(p)
	if err != nil {
		return TargetsResponse{}, err
	}
	t := budget.TargetsFor(p, calc.TargetCalories)
	return TargetsResponse{
		Calculation: calc,
		Targets:     t,
		Message:     budget.GoalMessage(p, t),
	}, nil
}

// Targets 計算 BMR、TDEE 與營養目標
func (h *Handler) Targets(c *gin.Context) {
	var p nutrition.UserProfile
	if err := c.ShouldBindJSON(&p); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	resp, err := h.targets(p)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecommendRequest 預算推薦請求
type RecommendRequest struct {
	Profile       nutrition.UserProfile `json:"profile"`
	MonthlyBudget int                   `json:"monthly_budget"`
	Preferences   budget.Preferences    `json:"preferences"`
}

func (req RecommendRequest) toBudget(t budget.NutritionTargets) budget.Request {
	return budget.Request{
		Goal:          req.Profile.Goal,
		Gender:        req.Profile.Gender,
		Targets:       t,
		MonthlyBudget: req.MonthlyBudget,
		Preferences:   req.Preferences,
	}
}

// RecommendResponse 推薦結果與營養目標
type RecommendResponse struct {
	budget.Recommendation
	Calculation nutrition.CalorieCalculation `json:"calculation"`
}

// Recommend 精確模式：費用估算與組合搜尋
func (h *Handler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	t, err := h.targets(req.Profile)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	rec, err := h.recommender.Recommend(c.Request.Context(), req.toBudget(t.Targets))
	if err != nil {
		handlers.Error(c, err)
		return
	}

	common.LogInfo("預算推薦",
		zap.String("id", rec.ID),
		zap.String("goal", string(req.Profile.Goal)),
		zap.Int("budget", req.MonthlyBudget),
		zap.Int("recipes", len(rec.Recipes)),
		zap.String("request_id", handlers.RequestID(c)),
	)
	c.JSON(http.StatusOK, RecommendResponse{Recommendation: rec, Calculation: t.Calculation})
}

// PersonalizedResponse 個人化推薦結果
type PersonalizedResponse struct {
	budget.Personalized
	Calculation nutrition.CalorieCalculation `json:"calculation"`
	Message     string                       `json:"personalized_message"`
}

// Personalized 依時段、偏好與目標推薦食譜及商品
func (h *Handler) Personalized(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	t, err := h.targets(req.Profile)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	res, err := h.recommender.Personalize(c.Request.Context(), req.toBudget(t.Targets))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, PersonalizedResponse{Personalized: res, Calculation: t.Calculation, Message: t.Message})
}

// FastRequest 快速推薦請求
type FastRequest struct {
	Goal          string `json:"goal" binding:"required"`
	TDEE          int    `json:"tdee"`
	MonthlyBudget int    `json:"monthly_budget"`
}

// Fast 快速模式：名稱估算與貪婪選擇
func (h *Handler) Fast(c *gin.Context) {
	var req FastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	goal, err := common.ParseGoal(req.Goal)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	res, err := h.fast.Recommend(c.Request.Context(), goal, req.TDEE, req.MonthlyBudget)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
