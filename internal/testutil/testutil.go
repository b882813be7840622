package testutil

import (
	"fmt"
	"testing"
	"time"

	"skillpath_backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB 返回一个迁移好的内存 SQLite 数据库，每个测试独立
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to get sql db: %v", err)
	}
	// 内存库只保留一个连接，避免并发测试中的表锁冲突
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// CreateUser 写入一个测试用户
func CreateUser(tb testing.TB, db *gorm.DB, name, email string, skills ...string) *model.User {
	tb.Helper()
	user := &model.User{
		Name:     name,
		Email:    email,
		Password: "hashed",
		Profile: model.UserProfile{
			Skills:          skills,
			ExperienceLevel: model.LevelBeginner,
		},
	}
	if err := db.Create(user).Error; err != nil {
		tb.Fatalf("failed to create user: %v", err)
	}
	return user
}

// Day 返回固定基准时间之后第 n 天的时间点
func Day(n int) time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}
