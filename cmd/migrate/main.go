package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op string

	flag.StringVar(&op, "op", "up", "要执行的迁移命令 (up, down, status, version)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	switch op {
	case "up", "down", "status", "version":
	default:
		logger.Error("不支持的迁移命令", slog.String("op", op))
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 迁移本身可能比较慢，不使用连接超时
	if err := repository.Migrate(context.Background(), dbpool, op); err != nil {
		logger.Error("迁移失败", slog.String("op", op), slog.String("error", err.Error()))
		return
	}
	logger.Info("迁移完成", slog.String("op", op))
}
