package repository

import "gorm.io/gorm"

// maxListPageSize 仓储层单页上限，接口层已按 100 归一化，此处兜住内部调用
const maxListPageSize = 200

// applyPagination 应用分页参数；pageSize<=0 表示不分页（内部全量读取）
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxListPageSize {
		pageSize = maxListPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

// newestFirst 流水/日志类列表统一按主键倒序，主键自增即写入顺序
func newestFirst(query *gorm.DB) *gorm.DB {
	return query.Order("id DESC")
}
