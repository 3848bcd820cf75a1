package common

import (
	"database/sql/driver"
)

// FileRef 表示一个待生成元数据的上传文件。
type FileRef struct {
	ID    string `json:"id" binding:"required"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FileRefList 以 JSON 格式存储文件列表。
type FileRefList []FileRef

// Value 实现 driver.Valuer 接口。
func (l FileRefList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return marshalJSONColumn([]FileRef(l))
}

// Scan 实现 sql.Scanner 接口。
func (l *FileRefList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	return scanJSONColumn(value, (*[]FileRef)(l), "FileRefList")
}

// Outcome 是单个文件的处理结果，写入任务的 result 字段。
type Outcome struct {
	FileID        string  `json:"id"`
	Metadata      JSONMap `json:"metadata"`
	UsageMetadata JSONMap `json:"usageMetadata,omitempty"`
}

// Succeeded 读取 metadata.status。
func (o Outcome) Succeeded() bool {
	status, _ := o.Metadata["status"].(bool)
	return status
}

// OutcomeList 以 JSON 格式存储处理结果列表。
type OutcomeList []Outcome

// Value 实现 driver.Valuer 接口。
func (l OutcomeList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return marshalJSONColumn([]Outcome(l))
}

// Scan 实现 sql.Scanner 接口。
func (l *OutcomeList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	return scanJSONColumn(value, (*[]Outcome)(l), "OutcomeList")
}

// Clone 复制列表及每条记录的 metadata，用于生成快照。
func (l OutcomeList) Clone() OutcomeList {
	if l == nil {
		return nil
	}
	out := make(OutcomeList, len(l))
	for i, o := range l {
		out[i] = Outcome{
			FileID:        o.FileID,
			Metadata:      o.Metadata.Clone(),
			UsageMetadata: o.UsageMetadata.Clone(),
		}
	}
	return out
}
