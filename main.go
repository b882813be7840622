package main

import (
	"log"

	"skillpath_backend/internal/app"
	"skillpath_backend/internal/config"
	"skillpath_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var configDir string

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			// 启动时强制执行数据库迁移（即使是 release 模式）
			cfg.ForceMigrate = migrate

			application := app.NewApp(cfg)
			defer logger.Log.Sync()
			application.Run()
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "force database migration on startup")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "只执行数据库迁移，完成后退出",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			cfg.ForceMigrate = true
			cfg.MigrateOnly = true

			app.NewApp(cfg)
			defer logger.Log.Sync()
			log.Println("database migration finished")
		},
	}
}

func main() {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:   "skillpath",
		Short: "SkillPath learning platform backend",
		Run:   serve.Run,
	}
	root.PersistentFlags().StringVar(&configDir, "config", "configs", "directory containing config.yaml")
	// 不带子命令时等同于 serve
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newMigrateCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
