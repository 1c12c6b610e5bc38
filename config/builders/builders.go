package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/courserec/config"
	"github.com/rushteam/courserec/filter"
	"github.com/rushteam/courserec/pipeline"
	"github.com/rushteam/courserec/pkg/conv"
	"github.com/rushteam/courserec/postprocess"
	"github.com/rushteam/courserec/rank"
	"github.com/rushteam/courserec/recall"
	"github.com/rushteam/courserec/rerank"
)

func init() {
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("rank.hybrid", BuildHybridNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("postprocess.enrich", BuildEnrichNode)
}

// BuildFanoutNode 构建召回 fan-out。未配置 sources 时默认 content + u2i。
//
//	config:
//	  timeout_ms: 200
//	  max_concurrent: 2
//	  sources:
//	    - type: content
//	    - type: u2i
//	      neighbor_count: 5
func BuildFanoutNode(cfg map[string]any) (pipeline.Node, error) {
	sources := []recall.Source{&recall.ContentRecall{}, &recall.UserBasedCF{}}

	if raw, ok := cfg["sources"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("sources must be a list")
		}
		sources = make([]recall.Source, 0, len(list))
		for _, sc := range list {
			sourceMap, ok := sc.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid source entry %v", sc)
			}
			switch sourceType := conv.ConfigGet(sourceMap, "type", ""); sourceType {
			case "content":
				sources = append(sources, &recall.ContentRecall{})
			case "u2i":
				sources = append(sources, &recall.UserBasedCF{
					NeighborCount: int(conv.ConfigGetInt64(sourceMap, "neighbor_count", recall.DefaultNeighborCount)),
				})
			default:
				return nil, fmt.Errorf("unknown source type: %q", sourceType)
			}
		}
	}

	fanout := &recall.Fanout{Sources: sources}
	if ms := conv.ConfigGetInt64(cfg, "timeout_ms", 0); ms > 0 {
		fanout.Timeout = time.Duration(ms) * time.Millisecond
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = int(n)
	}
	return fanout, nil
}

// BuildHybridNode 构建混合排序节点。alpha 随请求传入，配置中出现 alpha 视为错误。
func BuildHybridNode(cfg map[string]any) (pipeline.Node, error) {
	if _, ok := cfg["alpha"]; ok {
		return nil, fmt.Errorf("rank.hybrid: alpha is set per request, remove it from the node config")
	}
	return &rank.HybridNode{}, nil
}

// BuildFilterNode 构建过滤节点。
//
//	config:
//	  filters:
//	    - type: blacklist
//	      course_ids: [3, 7]
//	    - type: expr
//	      expr: item.features.content_score < 0.1
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "blacklist":
			raw, _ := filterMap["course_ids"].([]any)
			ids := make([]int64, 0, len(raw))
			for _, v := range raw {
				if f, ok := conv.ToFloat64(v); ok {
					ids = append(ids, int64(f))
				}
			}
			filters = append(filters, filter.NewBlacklistFilter(ids))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""))
			if err != nil {
				return nil, fmt.Errorf("filter expr: %w", err)
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %q", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

// BuildTopNNode 构建截断节点。截断数量取请求的 top_n，配置中出现 n 视为错误。
func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	if _, ok := cfg["n"]; ok {
		return nil, fmt.Errorf("rerank.topn: n is set per request via top_n, remove it from the node config")
	}
	return &rerank.TopNNode{}, nil
}

func BuildEnrichNode(map[string]any) (pipeline.Node, error) {
	return &postprocess.EnrichNode{}, nil
}
