package utils

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
// Value 与 Source 的语义由各 Node 自定义；这里只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / rank / filter / postprocess
}

// 链路中约定使用的 Label key。
const (
	LabelRecallSource = "recall_source" // content / u2i，多源命中时以 '|' 累积
	LabelRecallMetric = "recall_metric"
	LabelRankModel    = "rank_model"
	LabelFiltered     = "filtered"
)

// MergeLabel 用于合并同名 Label，遵循"保留历史、可追踪"的默认策略。
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	case existing.Source == incoming.Source:
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
