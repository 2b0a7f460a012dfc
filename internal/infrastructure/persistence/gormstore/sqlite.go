package gormstore

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqliteDriverName 带Unicode LOWER的sqlite驱动
// SQLite内置LOWER只转换ASCII，与MongoDB不区分大小写的正则不一致
const sqliteDriverName = "sqlite3_unicode"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// 同名同参数个数的自定义函数覆盖内置LOWER
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

func openSQLite(dsn string) gorm.Dialector {
	return sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: dsn})
}
