package utils

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
)

func GetBytesMD5(data []byte) string {
	hash := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(hash[:])
}
