package nutrition

// UnknownUnitGrams 未知單位的換算克數
const UnknownUnitGrams = 50

// Conversion 換算結果，Approximate 代表使用了通用預設值
type Conversion struct {
	Grams       float64 `json:"grams"`
	Approximate bool    `json:"approximate"`
}

// countUnit 計數單位：個別食材重量與類別預設值
type countUnit struct {
	overrides map[string]float64
	fallback  float64
}

// UnitTable 單位換算表
type UnitTable struct {
	direct map[string]float64
	counts map[string]countUnit
}

// DefaultUnits 預設單位換算表
func DefaultUnits() *UnitTable {
	return &UnitTable{
		direct: map[string]float64{
			"g":   1,
			"kg":  1000,
			"ml":  1,
			"L":   1000,
			"공기":  150,
			"T":   15,
			"큰술":  15,
			"스푼":  15,
			"t":   5,
			"작은술": 5,
			"컵":   200,
		},
		counts: map[string]countUnit{
			"개": {overrides: map[string]float64{"계란": 50, "마늘": 5, "양파": 200, "감자": 150, "당근": 100}, fallback: 50},
			"장": {overrides: map[string]float64{"사각어묵": 25, "알배추잎": 30, "깻잎": 1}, fallback: 20},
			"통": {overrides: map[string]float64{"알배기배추": 1500}, fallback: 500},
			"봉": {overrides: map[string]float64{"숙주": 200, "팽이버섯": 150}, fallback: 100},
			"단": {overrides: map[string]float64{"대파": 100, "얼갈이": 300}, fallback: 100},
		},
	}
}

// Convert 將數量與單位換算為克
func (u *UnitTable) Convert(quantity float64, unit, name string) Conversion {
	if g, ok := u.direct[unit]; ok {
		return Conversion{Grams: quantity * g}
	}

	if cu, ok := u.counts[unit]; ok {
		if g, ok := cu.overrides[name]; ok {
			return Conversion{Grams: quantity * g}
		}
		return Conversion{Grams: quantity * cu.fallback, Approximate: true}
	}

	return Conversion{Grams: quantity * UnknownUnitGrams, Approximate: true}
}

// SetOverride 設定個別食材的計數單位重量
func (u *UnitTable) SetOverride(unit, name string, grams float64) {
	cu, ok := u.counts[unit]
	if !ok {
		cu = countUnit{overrides: map[string]float64{}, fallback: UnknownUnitGrams}
	}
	cu.overrides[name] = grams
	u.counts[unit] = cu
}
