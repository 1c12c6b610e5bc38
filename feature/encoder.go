package feature

import "strings"

// Encoder 是类别特征编码器接口。
// 编码需要通过特征名查找对应的映射表。
type Encoder interface {
	// EncodeWithKey 编码单个值（指定特征名）
	EncodeWithKey(key string, value string) float64
}

// LabelEncoder Label 编码（标签编码）
// 将类别映射为整数；未知类别、缺失值均编码为 0。
type LabelEncoder struct {
	LabelMap map[string]map[string]int // 每个特征名对应的类别到整数的映射
}

// NewLabelEncoder 创建 Label 编码器
func NewLabelEncoder(labelMap map[string]map[string]int) *LabelEncoder {
	return &LabelEncoder{
		LabelMap: labelMap,
	}
}

// EncodeWithKey 编码单个值（指定特征名）。值会先去除首尾空白再匹配，大小写敏感。
func (e *LabelEncoder) EncodeWithKey(key string, value string) float64 {
	labelMap, ok := e.LabelMap[key]
	if !ok {
		return 0
	}
	if label, ok := labelMap[strings.TrimSpace(value)]; ok {
		return float64(label)
	}
	return 0 // 未知类别默认为 0
}

// Keys 返回编码器覆盖的特征名。
func (e *LabelEncoder) Keys() []string {
	keys := make([]string, 0, len(e.LabelMap))
	for k := range e.LabelMap {
		keys = append(keys, k)
	}
	return keys
}

var _ Encoder = (*LabelEncoder)(nil)
