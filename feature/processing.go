package feature

import "math"

// Normalizer 是特征归一化接口
type Normalizer interface {
	// NormalizeValueWithKey 归一化单个值（指定特征名）
	NormalizeValueWithKey(key string, value float64) float64
}

// MinMaxNormalizer Min-Max 归一化
// 公式: x' = (x - min) / (max - min)
// 特点: 将值缩放到 [0, 1] 区间；max == min 的常数列归一化为 0
type MinMaxNormalizer struct {
	Min map[string]float64 // 特征最小值
	Max map[string]float64 // 特征最大值
}

// NewMinMaxNormalizer 创建 Min-Max 归一化器
func NewMinMaxNormalizer(min, max map[string]float64) *MinMaxNormalizer {
	return &MinMaxNormalizer{
		Min: min,
		Max: max,
	}
}

// FitMinMax 在完整列上统计 min/max。空列不产生统计项。
func FitMinMax(columns map[string][]float64) *MinMaxNormalizer {
	n := &MinMaxNormalizer{
		Min: make(map[string]float64, len(columns)),
		Max: make(map[string]float64, len(columns)),
	}
	for key, col := range columns {
		if len(col) == 0 {
			continue
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range col {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		n.Min[key] = lo
		n.Max[key] = hi
	}
	return n
}

// NormalizeValueWithKey 归一化单个值（指定特征名）
func (n *MinMaxNormalizer) NormalizeValueWithKey(key string, value float64) float64 {
	min, ok := n.Min[key]
	if !ok {
		return value
	}
	rangeVal := n.Max[key] - min
	if rangeVal > 0 {
		return (value - min) / rangeVal
	}
	return 0
}

// NormalizeColumn 原地归一化一整列。
func (n *MinMaxNormalizer) NormalizeColumn(key string, col []float64) {
	for i, v := range col {
		col[i] = n.NormalizeValueWithKey(key, v)
	}
}

var _ Normalizer = (*MinMaxNormalizer)(nil)
