/*
*
  - 数据库迁移工具
  - @author: Sun977
  - @date: 2025.11.21
  - @description: 数据库模型迁移和测试数据初始化工具
  - @usage: go run main.go -env=test -seed=true -drop=true
    -drop
    是否先删除表（危险操作）
    -env string
    环境标识 (test, dev, prod) (default "test")
    -seed
    是否填充测试数据
    -verbose
    是否显示详细日志

示例:
main.exe -env=test -seed=true    # 测试环境迁移并填充数据
main.exe -env=prod -seed=false   # 生产环境仅迁移表结构
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"signhub/internal/config"
	"signhub/internal/model"
	"signhub/internal/pkg/auth"
	"signhub/internal/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MigrateOptions 迁移选项配置
type MigrateOptions struct {
	Environment string // 环境标识: test, dev, prod
	SeedData    bool   // 是否填充测试数据
	DropFirst   bool   // 是否先删除表（危险操作）
	Verbose     bool   // 是否显示详细日志
}

func main() {
	// 解析命令行参数
	opts := parseFlags()

	// 加载配置
	cfg, err := config.LoadConfig("", opts.Environment)
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 连接数据库
	db, err := database.NewMySQLConnection(&cfg.Database.MySQL)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	// 先删除表（仅限显式指定）
	if opts.DropFirst {
		if opts.Environment == "prod" {
			log.Fatal("生产环境禁止使用 -drop")
		}
		if err := dropTables(db); err != nil {
			log.Fatalf("删除表失败: %v", err)
		}
		fmt.Println("已删除全部表")
	}

	// 迁移表结构
	if err := migrateTables(db, opts.Verbose); err != nil {
		log.Fatalf("表结构迁移失败: %v", err)
	}
	fmt.Println("表结构迁移完成")

	// 填充测试数据
	if opts.SeedData {
		if err := seedData(db); err != nil {
			log.Fatalf("测试数据填充失败: %v", err)
		}
		fmt.Println("测试数据填充完成")
	}

	os.Exit(0)
}

// parseFlags 解析命令行参数
func parseFlags() *MigrateOptions {
	opts := &MigrateOptions{}
	flag.StringVar(&opts.Environment, "env", "test", "环境标识 (test, dev, prod)")
	flag.BoolVar(&opts.SeedData, "seed", false, "是否填充测试数据")
	flag.BoolVar(&opts.DropFirst, "drop", false, "是否先删除表（危险操作）")
	flag.BoolVar(&opts.Verbose, "verbose", false, "是否显示详细日志")
	flag.Parse()
	return opts
}

// migrateTables 迁移全部业务表
func migrateTables(db *gorm.DB, verbose bool) error {
	models := []interface{}{
		&model.Company{},
		&model.SingleInvoiceTaskData{},
		&model.MultipleInvoicesTaskData{},
		&model.CompanyTask{},
	}
	for _, m := range models {
		if verbose {
			fmt.Printf("迁移 %T\n", m)
		}
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("迁移 %T 失败: %w", m, err)
		}
	}
	return nil
}

// dropTables 删除全部业务表（外键序：先任务归属后内容表）
func dropTables(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&model.CompanyTask{},
		&model.SingleInvoiceTaskData{},
		&model.MultipleInvoicesTaskData{},
		&model.Company{},
	)
}

// seedData 填充一个演示公司，凭证直接打印到标准输出
func seedData(db *gorm.DB) error {
	credential, err := auth.GenerateCredential("demo-company")
	if err != nil {
		return err
	}
	company := &model.Company{
		CompanyUUID: uuid.NewString(),
		Name:        "demo-company",
		AuthToken:   credential,
	}
	if err := db.Create(company).Error; err != nil {
		return err
	}
	fmt.Printf("演示公司 company_uuid=%s credential=%s\n", company.CompanyUUID, credential)
	return nil
}
