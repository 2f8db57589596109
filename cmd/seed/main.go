package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var companyID int64
	var randSeed int64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 插入随机班次)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&companyID, "company-id", 1, "员工和班次所属的公司 ID")
	flag.Int64Var(&randSeed, "seed", time.Now().UnixNano(), "随机数种子，相同的种子生成相同的数据")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if companyID <= 0 {
		logger.Error("请输入合法的公司 ID")
		os.Exit(1)
	}
	if n <= 0 {
		logger.Error("请输入合法的记录数量")
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	queries := repository.NewRepository(cfg, dbpool).Queries()
	r := rand.New(rand.NewSource(randSeed))

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		cnt := seed.SeedWorkers(context.Background(), queries, r, domain.ID(companyID), n, cfg.Seed.EmailDomain)
		slog.Info("插入员工成功", slog.Int("count", cnt))
	case 2:
		shifts := seed.SeedShifts(context.Background(), queries, r, domain.ID(companyID), n)
		for _, shift := range shifts {
			slog.Info("插入班次", slog.String("id", shift.ID.String()), slog.String("name", shift.Name), slog.String("time", shift.TimeLabel()))
		}
		slog.Info("插入班次成功", slog.Int("count", len(shifts)))
	default:
		slog.Error("指定的操作非法")
	}
}
