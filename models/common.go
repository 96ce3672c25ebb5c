package models

import (
	"strings"

	"gorm.io/gorm"
)

func Count(tx *gorm.DB) (int64, error) {
	var cnt int64
	err := tx.Count(&cnt).Error
	return cnt, err
}

func Exists(tx *gorm.DB) (bool, error) {
	num, err := Count(tx)
	return num > 0, err
}

func Insert(tx *gorm.DB, obj interface{}) error {
	return tx.Create(obj).Error
}

func Update(tx *gorm.DB, obj interface{}) error {
	return tx.Save(obj).Error
}

func Delete(tx *gorm.DB, obj interface{}) error {
	return tx.Delete(obj).Error
}

// IsDuplicateErr 识别唯一约束冲突（mysql 与 sqlite 的报错文案不同）。
// 只认唯一索引冲突，NOT NULL/CHECK 等其他约束不在此列。
func IsDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// GetByCondition 通用的数据库查询方法
func GetByCondition[T interface{}](db *gorm.DB, where string, args ...interface{}) ([]T, error) {
	var lst []T
	err := db.Where(where, args...).Find(&lst).Error
	if err != nil {
		return nil, err
	}
	return lst, nil
}
