package database

import (
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormopentracing "gorm.io/plugin/opentracing"

	"ytgify.com/cmd/model"
	"ytgify.com/config"
	"ytgify.com/pkg/sharding"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Get 返回进程内共享的连接, 首次调用时按配置建立连接并迁移表结构
func Get() *gorm.DB {
	once.Do(func() {
		conn, err := Open(config.ConfigInfo.Mysql.DSN(), config.ConfigInfo.ViewSharding.Shards)
		if err != nil {
			panic(err)
		}
		if err = model.AutoMigrate(conn); err != nil {
			panic(errors.WithMessage(err, "auto migrate"))
		}
		db = conn
	})
	return db
}

// Open connects to MySQL with the tracing plugin. A non-zero shards value
// splits gif_views by gif_id.
func Open(dsn string, shards uint) (*gorm.DB, error) {
	conn, err := gorm.Open(mysql.Open(dsn),
		&gorm.Config{
			PrepareStmt:            true,
			SkipDefaultTransaction: true,
			TranslateError:         true,
		},
	)
	if err != nil {
		return nil, errors.WithMessage(err, "open mysql")
	}
	if err = conn.Use(gormopentracing.New()); err != nil {
		return nil, errors.WithMessage(err, "use opentracing plugin")
	}
	if err = UseViewSharding(conn, shards); err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return conn, nil
}

// UseViewSharding 按 gif_id 把 gif_views 拆成 shards 张表, shards 为 0 时不拆.
// 必须在 model.AutoMigrate 之前调用, 分表插件的迁移器才会建出 gif_views_0..N-1
func UseViewSharding(conn *gorm.DB, shards uint) error {
	if shards == 0 {
		return nil
	}
	if err := conn.Use(sharding.NewSharding("gif_id", shards, "gif_views")); err != nil {
		return errors.WithMessage(err, "use sharding plugin")
	}
	hlog.Infof("gif_views sharded into %d tables", shards)
	return nil
}

// Incr 计数列自增表达式
func Incr(column string, n int64) clause.Expr {
	return gorm.Expr(column+" + ?", n)
}

// Decr 计数列自减表达式, 不会减到零以下
func Decr(column string, n int64) clause.Expr {
	return gorm.Expr("CASE WHEN "+column+" > ? THEN "+column+" - ? ELSE 0 END", n, n)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// EscapeLike 转义 LIKE 通配符, 条件里需要写 ESCAPE '!'
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// InsertIgnore 插入一行, 唯一键冲突时什么也不做并返回 false
func InsertIgnore(tx *gorm.DB, value interface{}) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
