package nutrition

import "meal-planner/internal/pkg/common"

// Reference 每 100g 的營養值
type Reference = common.NutritionProfile

// Table 食材名稱對應的營養參考值
type Table map[string]Reference

// DefaultTable 預設營養參考表（每 100g）
func DefaultTable() Table {
	return Table{
		// 蛋白質類
		"계란":   {Calories: 155, Protein: 12.6, Carb: 1.1, Fat: 11.1},
		"비엔나":  {Calories: 315, Protein: 12.0, Carb: 2.0, Fat: 28.5},
		"훈제연어": {Calories: 117, Protein: 25.4, Carb: 0, Fat: 4.3},
		"우삼겹":  {Calories: 331, Protein: 15.0, Carb: 0, Fat: 30.0},
		"닭가슴살": {Calories: 165, Protein: 31.0, Carb: 0, Fat: 3.6},
		"두부":   {Calories: 84, Protein: 8.5, Carb: 1.9, Fat: 4.7},
		"소고기":  {Calories: 250, Protein: 26.0, Carb: 0, Fat: 15.0},
		"돼지고기": {Calories: 242, Protein: 27.0, Carb: 0, Fat: 14.0},

		// 蔬菜類
		"알배기배추": {Calories: 14, Protein: 1.3, Carb: 2.8, Fat: 0.1},
		"배추":    {Calories: 12, Protein: 1.1, Carb: 2.4, Fat: 0.1},
		"당근":    {Calories: 37, Protein: 0.8, Carb: 8.8, Fat: 0.2},
		"마늘":    {Calories: 130, Protein: 6.2, Carb: 28.4, Fat: 0.3},
		"대파":    {Calories: 27, Protein: 1.4, Carb: 6.2, Fat: 0.1},
		"양파":    {Calories: 37, Protein: 1.0, Carb: 8.9, Fat: 0.1},
		"아보카도":  {Calories: 190, Protein: 2.0, Carb: 8.6, Fat: 19.5},
		"숙주":    {Calories: 13, Protein: 1.4, Carb: 2.1, Fat: 0.1},
		"깻잎":    {Calories: 41, Protein: 3.9, Carb: 7.1, Fat: 0.7},
		"감자":    {Calories: 77, Protein: 2.0, Carb: 17.0, Fat: 0.1},

		// 穀物類
		"밥":    {Calories: 130, Protein: 2.5, Carb: 29.0, Fat: 0.3},
		"떡볶이떡": {Calories: 124, Protein: 2.6, Carb: 28.0, Fat: 0.4},

		// 調味料
		"소금":   {Calories: 0, Protein: 0, Carb: 0, Fat: 0},
		"간장":   {Calories: 53, Protein: 8.9, Carb: 4.6, Fat: 0.1},
		"설탕":   {Calories: 387, Protein: 0, Carb: 99.8, Fat: 0},
		"참기름":  {Calories: 900, Protein: 0, Carb: 0, Fat: 100},
		"마요네즈": {Calories: 680, Protein: 1.1, Carb: 2.9, Fat: 75.3},
		"땅콩버터": {Calories: 588, Protein: 22.5, Carb: 22.3, Fat: 49.9},
	}
}

// Lookup 以完整名稱查詢
func (t Table) Lookup(name string) (Reference, bool) {
	ref, ok := t[name]
	return ref, ok
}
