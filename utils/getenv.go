package utils

import (
	"os"
	"strconv"
)

// GetEnvDefault は環境変数の値を返します。未設定の場合はdefaultValueを
// 返します。
func GetEnvDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt は整数の環境変数を返します。未設定または数値として解釈
// できない場合はdefaultValueを返します。
func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
