package nutrition

import (
	"math"

	"meal-planner/internal/pkg/common"
)

// Profile 精確模式的計算結果
type Profile struct {
	common.NutritionProfile
	Matched          int `json:"matched"`
	Unknown          int `json:"unknown"`
	ApproximateItems int `json:"approximate_items"`
}

// Estimator 依參考表與單位換算估算營養
type Estimator struct {
	table Table
	units *UnitTable
}

// NewEstimator 創建估算器，參數為 nil 時使用預設表
func NewEstimator(table Table, units *UnitTable) *Estimator {
	if table == nil {
		table = DefaultTable()
	}
	if units == nil {
		units = DefaultUnits()
	}
	return &Estimator{table: table, units: units}
}

// Calculate 加總每個食材的營養，未知名稱貢獻 0
func (e *Estimator) Calculate(ings []common.ParsedIngredient) Profile {
	var total common.NutritionProfile
	var p Profile

	for _, ing := range ings {
		ref, ok := e.table.Lookup(ing.Name)
		if !ok {
			p.Unknown++
			continue
		}

		conv := e.units.Convert(ing.Quantity, ing.Unit, ing.Name)
		if conv.Approximate {
			p.ApproximateItems++
		}
		ratio := conv.Grams / 100
		total = total.Add(common.NutritionProfile{
			Calories: ref.Calories * ratio,
			Protein:  ref.Protein * ratio,
			Carb:     ref.Carb * ratio,
			Fat:      ref.Fat * ratio,
		})
		p.Matched++
	}

	p.NutritionProfile = common.NutritionProfile{
		Calories: math.Round(common.NonNegative(total.Calories)),
		Protein:  common.Round1(common.NonNegative(total.Protein)),
		Carb:     common.Round1(common.NonNegative(total.Carb)),
		Fat:      common.Round1(common.NonNegative(total.Fat)),
	}
	return p
}

// Convert 單位換算
func (e *Estimator) Convert(ing common.ParsedIngredient) Conversion {
	return e.units.Convert(ing.Quantity, ing.Unit, ing.Name)
}

// Known 名稱是否在參考表中
func (e *Estimator) Known(name string) bool {
	_, ok := e.table.Lookup(name)
	return ok
}
