package recipe

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/classify"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"
)

// ParseRequest 食材文字解析請求
type ParseRequest struct {
	Text        string `json:"text" binding:"required"`
	Method      string `json:"method,omitempty"`
	Situation   string `json:"situation,omitempty"`
	Description string `json:"description,omitempty"`
}

// ParseResponse 解析、營養與商品比對結果
type ParseResponse struct {
	Parse     ingredient.Result         `json:"parse"`
	Nutrition nutrition.Profile         `json:"nutrition"`
	Products  []common.RecipeIngredient `json:"products"`
	GoalFit   []classify.Match          `json:"goal_fit"`
}

// ParseIngredients 解析食材文字並估算營養、比對商品
func (h *Handler) ParseIngredients(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		handlers.BadRequest(c, errors.New("empty ingredient text"))
		return
	}

	t := h.repo.Transformer()
	parsed := t.ParseIngredients(req.Text)
	profile := t.Estimator().Calculate(parsed.Ingredients)
	goals := t.Classifier().Explain(classify.Input{
		Method:      req.Method,
		Situation:   req.Situation,
		Description: req.Description,
		Ingredients: parsed.Ingredients,
		Nutrition:   profile.NutritionProfile,
	})

	common.LogInfo("食材解析完成",
		zap.Int("ingredients", len(parsed.Ingredients)),
		zap.Int("dropped", parsed.Dropped),
		zap.String("request_id", handlers.RequestID(c)),
	)
	c.JSON(http.StatusOK, ParseResponse{
		Parse:     parsed,
		Nutrition: profile,
		Products:  t.Matcher().MatchIngredients(parsed.Ingredients),
		GoalFit:   goals,
	})
}
