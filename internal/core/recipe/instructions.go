package recipe

// InstructionTemplates 調理法對應的步驟範本
type InstructionTemplates map[string][]string

// GenericInstructions 沒有對應調理法時的三步驟
var GenericInstructions = []string{
	"재료를 준비하고 손질하세요",
	"적절한 방법으로 조리하세요",
	"간을 맞추고 완성하세요",
}

// DefaultInstructions 預設的四步驟範本
func DefaultInstructions() InstructionTemplates {
	return InstructionTemplates{
		"부침": {
			"팬에 기름을 두르고 중약불로 달궈주세요",
			"재료를 올리고 노릇하게 부쳐주세요",
			"뒤집어서 반대면도 익혀주세요",
			"완성된 요리를 접시에 담아주세요",
		},
		"볶음": {
			"팬을 달구고 기름을 두르세요",
			"재료를 넣고 센 불에서 빠르게 볶아주세요",
			"양념을 넣고 골고루 섞어주세요",
			"불을 끄고 접시에 담아 완성하세요",
		},
		"찜": {
			"재료를 깨끗이 손질하여 준비하세요",
			"찜기에 물을 넣고 끓여주세요",
			"재료를 찜기에 올리고 뚜껑을 덮어주세요",
			"충분히 익으면 양념과 함께 완성하세요",
		},
		"끓이기": {
			"냄비에 물을 넣고 끓여주세요",
			"재료를 넣고 중불에서 끓여주세요",
			"간을 맞추고 더 끓여주세요",
			"그릇에 담아 뜨겁게 완성하세요",
		},
	}
}

// For 回傳調理法的步驟副本
func (t InstructionTemplates) For(method string) []string {
	steps, ok := t[method]
	if !ok {
		steps = GenericInstructions
	}
	out := make([]string, len(steps))
	copy(out, steps)
	return out
}
