// Package llm 封装对 OpenAI 兼容模型的结构化补全调用：
// 给定 system/user 提示词和目标结构，返回解析好的结构体。
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/econ_radar/pkg/config"
)

// NewChatModel 初始化 LLM 客户端
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (model.ChatModel, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return chatModel, nil
}

// NewLimiter 按配置构造模型调用限流器
func NewLimiter(cfg config.ConcurrencyConfig) *rate.Limiter {
	limit := rate.Limit(float64(cfg.RPM) / 60.0)
	return rate.NewLimiter(limit, cfg.QPS)
}

const (
	maxRetries = 3
	baseDelay  = 2 * time.Second
)

// Complete 发起一次结构化补全：要求模型只输出 JSON，解析进 T。
// 429 限流错误按指数退避重试，JSON 解析失败也会重试。
func Complete[T any](ctx context.Context, cm model.ChatModel, limiter *rate.Limiter, system, user string) (*T, error) {
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: system + "\n\n请严格按照 JSON 格式输出，不要包含任何 markdown 标记。"},
			{Role: schema.User, Content: user},
		}

		resp, err := cm.Generate(ctx, messages)
		if err != nil {
			if isRateLimited(err) {
				lastErr = err
				if i < maxRetries {
					time.Sleep(baseDelay * time.Duration(1<<i))
					continue
				}
			}
			return nil, err
		}

		var out T
		if err := json.Unmarshal([]byte(stripJSONFence(resp.Content)), &out); err != nil {
			lastErr = fmt.Errorf("json unmarshal: %w", err)
			if i < maxRetries {
				continue
			}
			return nil, lastErr
		}
		return &out, nil
	}
	return nil, lastErr
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

// stripJSONFence 去掉模型偶尔带上的 ```json 代码围栏
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
