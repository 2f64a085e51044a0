package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// ContextUserKey gin.Context 中保存当前用户 Claims 的键
const ContextUserKey = "user"
