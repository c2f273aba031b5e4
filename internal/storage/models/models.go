package models

import (
	"time"
)

// 注意：
// - 保持与 internal/migrate/sql 中的建表语句对齐
// - 不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt

// IngestRecord 映射 ingest_records 表
type IngestRecord struct {
	// 主键，自增顺序即追加顺序
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// 接入面名称（frames / payloads）
	Surface string `gorm:"column:surface;type:text;not null;index:idx_ingest_records_surface_id,priority:1"`
	// 服务端本地时间 "YYYY-MM-DD HH:MM:SS"
	RecordedAt string `gorm:"column:recorded_at;type:text;not null"`
	// 原样保存的十六进制帧
	Payload   string    `gorm:"column:payload;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (IngestRecord) TableName() string { return "ingest_records" }
