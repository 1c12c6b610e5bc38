package model

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rushteam/courserec/dataset"
)

// Snapshot 是一次加载产出的完整只读模型：内容矩阵、评分矩阵、用户相似度表一起构建、一起替换。
// 构建完成后不再修改，可被任意多个请求并发读取。
type Snapshot struct {
	Version string
	BuiltAt time.Time
	Source  string

	Content    *ContentMatrix
	UserItem   *UserItem
	Similarity *UserSimilarity
}

// BuildOptions 控制快照构建。
type BuildOptions struct {
	// SimilarityWorkers 计算用户相似度的并发数，<= 0 使用 GOMAXPROCS
	SimilarityWorkers int
}

// Build 从预处理后的数据集构建快照。
func Build(ctx context.Context, table *dataset.Table, opts BuildOptions) (*Snapshot, error) {
	content := BuildContentMatrix(table)
	ui := BuildUserItem(table)
	sim, err := BuildUserSimilarity(ctx, ui, opts.SimilarityWorkers)
	if err != nil {
		return nil, fmt.Errorf("build user similarity: %w", err)
	}
	return &Snapshot{
		Version:    uuid.NewString(),
		BuiltAt:    time.Now(),
		Source:     table.Source,
		Content:    content,
		UserItem:   ui,
		Similarity: sim,
	}, nil
}

// LoadFile 读取数据集文件并构建快照。
func LoadFile(ctx context.Context, path string, opts BuildOptions) (*Snapshot, error) {
	table, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	return Build(ctx, table, opts)
}

type snapshotKey struct{}

// NewContext 把快照固定到请求 context 中，保证同一请求内所有 Node 读到同一份快照。
func NewContext(ctx context.Context, snap *Snapshot) context.Context {
	return context.WithValue(ctx, snapshotKey{}, snap)
}

// FromContext 取出请求固定的快照。
func FromContext(ctx context.Context) (*Snapshot, bool) {
	snap, ok := ctx.Value(snapshotKey{}).(*Snapshot)
	return snap, ok && snap != nil
}
