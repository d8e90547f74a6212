package utils

import (
	"strconv"
)

// Transfer 把 jwt claims 中的数值统一转成 int64, 无法识别时返回 -1
func Transfer(value interface{}) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		if intValue, err := strconv.ParseInt(v, 10, 64); err == nil {
			return intValue
		}
	}
	return -1
}
