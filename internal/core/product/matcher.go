package product

import (
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/samber/lo"

	"meal-planner/internal/pkg/common"
)

// 比對方式
const (
	MatchExact     = "exact"
	MatchSubstring = "substring"
	MatchFallback  = "fallback"
)

// Stats 比對統計
type Stats struct {
	Exact     int64 `json:"exact"`
	Substring int64 `json:"substring"`
	Fallback  int64 `json:"fallback"`
}

// Matcher 食材名稱到商品的比對器，不會失敗
type Matcher struct {
	catalog *Catalog

	exact     atomic.Int64
	substring atomic.Int64
	fallback  atomic.Int64
}

// NewMatcher 創建比對器
func NewMatcher(catalog *Catalog) *Matcher {
	if catalog == nil {
		catalog = &Catalog{Ingredients: map[string]common.Product{}}
	}
	return &Matcher{catalog: catalog}
}

// Match 依序：對應表、名稱包含、合成商品
func (m *Matcher) Match(name string) common.Product {
	p, _ := m.MatchWithKind(name)
	return p
}

// MatchWithKind 同時回傳比對方式
func (m *Matcher) MatchWithKind(name string) (common.Product, string) {
	name = strings.TrimSpace(name)

	if p, ok := m.catalog.Ingredients[name]; ok {
		m.exact.Add(1)
		return p, MatchExact
	}

	if name != "" {
		for _, p := range m.catalog.Products {
			if strings.Contains(p.Name, name) || strings.Contains(name, firstWord(p.Name)) {
				m.substring.Add(1)
				return p, MatchSubstring
			}
		}
	}

	m.fallback.Add(1)
	return Fallback(name), MatchFallback
}

// MatchIngredients 將解析後的食材連結到商品，同名只保留第一個
func (m *Matcher) MatchIngredients(ings []common.ParsedIngredient) []common.RecipeIngredient {
	unique := lo.UniqBy(ings, func(ing common.ParsedIngredient) string {
		return ing.Name
	})
	return lo.Map(unique, func(ing common.ParsedIngredient, _ int) common.RecipeIngredient {
		return common.RecipeIngredient{
			Name:     ing.Name,
			Product:  m.Match(ing.Name),
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		}
	})
}

// Stats 回傳目前的統計
func (m *Matcher) Stats() Stats {
	return Stats{
		Exact:     m.exact.Load(),
		Substring: m.substring.Load(),
		Fallback:  m.fallback.Load(),
	}
}

// Catalog 回傳使用中的目錄
func (m *Matcher) Catalog() *Catalog {
	return m.catalog
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}

// Fallback 找不到商品時合成的預設商品
func Fallback(name string) common.Product {
	escaped := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return common.Product{
		ID:          "fallback-" + name,
		Name:        name + " (쿠팡)",
		Price:       3000,
		ImageURL:    "https://via.placeholder.com/200x200?text=" + escaped,
		PurchaseURL: "https://www.coupang.com/search?q=" + escaped,
		Category:    "식재료",
		Nutrition: common.ProductNutrition{
			Calories: 50,
			Carb:     10,
			Protein:  2,
			Fat:      1,
			Sodium:   100,
			Sugar:    0,
		},
		Description: name + " 상품",
		Brand:       "일반",
		Weight:      "1개",
		Rating:      4.0,
		ReviewCount: 100,
	}
}
