package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/courserec/pipeline"
)

// 使用配置驱动时，需在入口处 import _ "github.com/rushteam/courserec/config/builders"
// 以触发内置 Node（recall.fanout、rank.hybrid、rerank.topn 等）的 init 注册。

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
type NodeBuilder = pipeline.NodeBuilder

var (
	defaultBuilders   = make(map[string]NodeBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，供 DefaultFactory 与配置驱动使用。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回基于当前注册表构建的 NodeFactory。
func DefaultFactory() *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		f.Register(typeName, builder)
	}
	return f
}

// requestScopedKeys 是只能随请求传入、不允许写进 node 配置的键。
var requestScopedKeys = map[string][]string{
	"rank.hybrid": {"alpha"},
	"rerank.topn": {"n"},
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均已注册；若有未支持类型则返回包含已支持列表的错误。
// 请求级参数（alpha、top_n）出现在 node 配置中同样返回错误。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	supported := SupportedTypes()
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	for _, nc := range cfg.Pipeline.Nodes {
		if _, ok := defaultBuilders[nc.Type]; !ok {
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, supported)
		}
		for _, key := range requestScopedKeys[nc.Type] {
			if _, ok := nc.Config[key]; ok {
				return fmt.Errorf("node %q: %q is a per-request parameter and cannot be configured", nc.Type, key)
			}
		}
	}
	return nil
}

// BuildPipeline 校验并构建配置中的 Pipeline。
func BuildPipeline(cfg *pipeline.Config) (*pipeline.Pipeline, error) {
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	return cfg.BuildPipeline(DefaultFactory())
}
