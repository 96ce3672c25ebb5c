package util

import (
	"encoding/json"

	"github.com/hatcher/tasks/pkg/logs"
)

// Convert 对象转换
func Convert[T interface{}](src interface{}) (*T, error) {
	b, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	var dat T
	err = json.Unmarshal(b, &dat)
	if err != nil {
		return nil, err
	}
	return &dat, nil
}

// ToJson 对象转换为json
func ToJson(o interface{}) (string, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToJsonIgnoreError 对象转换为json，忽略错误
func ToJsonIgnoreError(o interface{}) string {
	if o == nil {
		logs.Errorf("[ToJsonIgnoreError]对象为nil")
		return ""
	}
	b, err := json.Marshal(o)
	if err != nil {
		logs.Errorf("[ToJsonIgnoreError]对象转换为json失败：%s", err.Error())
		return ""
	}
	return string(b)
}
