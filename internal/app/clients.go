package app

import (
	"github.com/yungbote/hotflow/internal/platform/logger"
	"github.com/yungbote/hotflow/internal/platform/openai"
	"github.com/yungbote/hotflow/internal/platform/taobao"
)

func wireTaobao(log *logger.Logger, cfg *Settings) (*taobao.Client, error) {
	if err := cfg.RequireTaobao(); err != nil {
		return nil, err
	}
	return taobao.New(log, cfg.Taobao)
}

func wireLLM(log *logger.Logger, cfg *Settings) (openai.Client, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}
	client, err := openai.NewClient(log, cfg.LLM)
	if err != nil {
		return nil, err
	}
	log.Debug("LLM client ready", "provider", string(client.Provider()), "model", client.Model())
	return client, nil
}
