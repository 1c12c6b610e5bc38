package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rushteam/courserec/core"
)

// Raw 是读入但尚未预处理的数据集：表头 + 字符串单元格。
type Raw struct {
	Source  string
	Header  []string
	Records [][]string

	index map[string]int
}

// Read 读取 .csv 或 .xlsx（第一个工作表）数据集并校验必需列。
//
// 文件不存在返回 DATA_SOURCE_NOT_FOUND；缺列或格式不支持返回 SCHEMA_ERROR。
func Read(path string) (*Raw, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeDataSourceNotFound,
				fmt.Sprintf("dataset: %s not found", path), err)
		}
		return nil, fmt.Errorf("stat dataset: %w", err)
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	default:
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeSchemaError,
			fmt.Sprintf("dataset: unsupported file type %q", filepath.Ext(path)))
	}
	if err != nil {
		return nil, err
	}
	return newRaw(path, rows)
}

// FromRecords 基于内存中的表头与行构建 Raw，主要用于测试和非文件数据源。
func FromRecords(header []string, records [][]string) (*Raw, error) {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	rows = append(rows, records...)
	return newRaw("memory", rows)
}

func newRaw(source string, rows [][]string) (*Raw, error) {
	if len(rows) == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeSchemaError,
			fmt.Sprintf("dataset: %s has no header row", source))
	}

	header := make([]string, len(rows[0]))
	index := make(map[string]int, len(header))
	for i, h := range rows[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeSchemaError,
			fmt.Sprintf("dataset: %s missing required columns %v", source, missing))
	}

	return &Raw{
		Source:  source,
		Header:  header,
		Records: rows[1:],
		index:   index,
	}, nil
}

// Cell 返回第 row 行 col 列的值；行长度不足时视为空。
func (r *Raw) Cell(row int, col string) string {
	i, ok := r.index[col]
	if !ok {
		return ""
	}
	rec := r.Records[row]
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}

// Len 返回数据行数（不含表头）。
func (r *Raw) Len() int {
	return len(r.Records)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeSchemaError,
				fmt.Sprintf("dataset: parse %s", path), err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeSchemaError,
			fmt.Sprintf("dataset: open %s", path), err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeSchemaError,
			fmt.Sprintf("dataset: %s has no sheets", path))
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeSchemaError,
			fmt.Sprintf("dataset: read sheet %q", sheet), err)
	}
	return rows, nil
}
