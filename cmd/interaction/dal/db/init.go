package db

import (
	"gorm.io/gorm"

	"ytgify.com/pkg/database"
)

var DB *gorm.DB

// Init init DB
func Init() {
	DB = database.Get()
}
