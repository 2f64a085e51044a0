package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrStaleRevision 条件更新未命中：版本号已变化或会话已结束
	ErrStaleRevision = errors.New("stale revision")
	// ErrAlreadyMaterialized 会话已经生成过课程
	ErrAlreadyMaterialized = errors.New("session already materialized")
)

// maxUpsertAttempts 并发首次创建撞唯一索引时整体重试的次数
const maxUpsertAttempts = 3

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// forUpdate sqlite 不支持 FOR UPDATE，写事务本身已串行
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
