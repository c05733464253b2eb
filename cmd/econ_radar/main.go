package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/iWorld-y/econ_radar/pkg/config"
	"github.com/iWorld-y/econ_radar/pkg/dataset"
	"github.com/iWorld-y/econ_radar/pkg/engine"
	"github.com/iWorld-y/econ_radar/pkg/llm"
	"github.com/iWorld-y/econ_radar/pkg/logger"
	"github.com/iWorld-y/econ_radar/pkg/query"
	"github.com/iWorld-y/econ_radar/pkg/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	question := flag.String("q", "", "待分析的问题，留空则进入交互输入")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if cfg.LLM.APIKey == "" {
		log.Fatal("配置错误: 未设置 llm.api_key（或环境变量 LLM_API_KEY）")
	}
	if cfg.Dataset.Path == "" {
		log.Fatal("配置错误: 未设置 dataset.path")
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动经济分析助手...")

	ctx := context.Background()

	// 3. 数据集句柄，进程内只加载一次
	data := dataset.Open(cfg.Dataset.Path)

	// 4. 初始化数据库连接（可选）
	var store *storage.Storage
	if cfg.DB.Host != "" {
		s, err := storage.NewStorage(cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 分析结果将不落库。", err)
		} else {
			store = s
			defer store.Close()
			logger.Log.Info("已成功连接到数据库")
		}
	} else {
		logger.Log.Info("未配置数据库信息，跳过数据库连接")
	}

	// 5. 初始化 LLM 与限流器
	chatModel, err := llm.NewChatModel(ctx, cfg.LLM)
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}
	limiter := llm.NewLimiter(cfg.Concurrency)

	// 6. 组装流水线
	eng := engine.New(query.NewParser(data), data, chatModel, limiter)

	q := strings.TrimSpace(*question)
	if q == "" {
		fmt.Print("你想分析什么？> ")
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		q = strings.TrimSpace(line)
	}
	if q == "" {
		log.Fatal("问题为空")
	}

	result, err := eng.Analyze(ctx, q)
	if err != nil {
		logger.Log.Fatalf("分析失败: %v", err)
	}

	if store != nil {
		if err := store.SaveResult(q, result); err != nil {
			logger.Log.Errorf("保存分析结果失败: %v", err)
		}
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Log.Fatalf("序列化结果失败: %v", err)
	}
	fmt.Println(string(out))
}
