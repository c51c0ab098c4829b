package recipe

import (
	"meal-planner/internal/core/classify"
	"meal-planner/internal/core/corpus"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/product"
	"meal-planner/internal/pkg/common"
)

// 缺值時的預設文字
const (
	DefaultName        = "제목 없음"
	DefaultDescription = "설명 없음"
	DefaultChef        = "알 수 없음"
	DefaultRegistered  = "20240101"
	DefaultImage       = "https://images.unsplash.com/photo-1546833999-b9f581a1996d?q=80&w=2940&auto=format&fit=crop&ixlib=rb-4.0.3"
	SourceChefRecipe   = "chef_recipe"
	IDPrefix           = "mankae-"
)

// Transformer 將語料紀錄轉換為食譜
// --------------------------------------------------
type Transformer struct {
	parser       *ingredient.Parser
	estimator    *nutrition.Estimator
	classifier   *classify.Classifier
	matcher      *product.Matcher
	instructions InstructionTemplates
}

// Option 轉換器選項
type Option func(*Transformer)

// WithInstructions 替換步驟範本
func WithInstructions(t InstructionTemplates) Option {
	return func(tr *Transformer) {
		tr.instructions = t
	}
}

// WithClassifier 替換分類器
func WithClassifier(c *classify.Classifier) Option {
	return func(tr *Transformer) {
		tr.classifier = c
	}
}

// WithEstimator 替換營養估算器
func WithEstimator(e *nutrition.Estimator) Option {
	return func(tr *Transformer) {
		tr.estimator = e
	}
}

// NewTransformer 創建新的轉換器
func NewTransformer(matcher *product.Matcher, opts ...Option) *Transformer {
	t := &Transformer{
		parser:       ingredient.NewParser(),
		estimator:    nutrition.NewEstimator(nil, nil),
		classifier:   classify.NewClassifier(classify.DefaultRules()),
		matcher:      matcher,
		instructions: DefaultInstructions(),
	}
	if t.matcher == nil {
		t.matcher = product.NewMatcher(nil)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform 依序：解析食材、計算營養、分類、品質、餐別、難度、時間、步驟、標籤、商品
func (t *Transformer) Transform(rec corpus.Record) common.Recipe {
	parsed := t.parser.Parse(rec.Ingredients)
	ings := parsed.Ingredients

	profile := t.estimator.Calculate(ings)
	n := profile.NutritionProfile

	goals := t.classifier.Classify(classify.Input{
		Ingredients: ings,
		Method:      rec.Method,
		Situation:   rec.Situation,
		Description: rec.Description,
		Nutrition:   n,
	})

	ratings := QualityScore(rec.Views, rec.Scraps)

	return common.Recipe{
		ID:                  IDPrefix + rec.SerialID,
		Name:                common.FirstNonEmpty(rec.DishName, DefaultName),
		Description:         common.FirstNonEmpty(rec.Description, DefaultDescription),
		Image:               common.FirstNonEmpty(rec.ImageURL, DefaultImage),
		CookingTime:         InferCookingTime(rec.TimeText),
		Difficulty:          InferDifficulty(rec.DifficultyText),
		Instructions:        t.instructions.For(rec.Method),
		Tags:                Tags(rec, n),
		MealType:            InferMealType(rec.Title, rec.Kind, rec.Situation),
		GoalFit:             goals,
		Nutrition:           n,
		Ingredients:         t.linkProducts(ings),
		NutritionHighlights: Highlights(ings, n),
		UserRatings:         &ratings,
		SourceInfo: &common.SourceInfo{
			Chef:        common.FirstNonEmpty(rec.RegistrantName, DefaultChef),
			Source:      SourceChefRecipe,
			Verified:    rec.Views > 100,
			LastUpdated: registeredDate(rec.RegisteredAt),
		},
		Category: rec.Kind,
		Method:   rec.Method,
		Views:    rec.Views,
		Scraps:   rec.Scraps,
	}
}

func (t *Transformer) linkProducts(ings []common.ParsedIngredient) []common.RecipeIngredient {
	linked := t.matcher.MatchIngredients(ings)
	for i := range linked {
		conv := t.estimator.Convert(common.ParsedIngredient{
			Name:     linked[i].Name,
			Quantity: linked[i].Quantity,
			Unit:     linked[i].Unit,
		})
		linked[i].Approximate = conv.Approximate
	}
	return linked
}

// ParseIngredients 只解析食材文字
func (t *Transformer) ParseIngredients(blob string) ingredient.Result {
	return t.parser.Parse(blob)
}

// Estimator 回傳營養估算器
func (t *Transformer) Estimator() *nutrition.Estimator {
	return t.estimator
}

// Classifier 回傳分類器
func (t *Transformer) Classifier() *classify.Classifier {
	return t.classifier
}

// Matcher 回傳商品比對器
func (t *Transformer) Matcher() *product.Matcher {
	return t.matcher
}

func registeredDate(s string) string {
	if s == "" {
		return DefaultRegistered
	}
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
