package app

import (
	"github.com/yungbote/hotflow/internal/modules/creative"
	"github.com/yungbote/hotflow/internal/modules/creative/prompts"
	"github.com/yungbote/hotflow/internal/services"
)

func (a *App) FetchService() (services.FetchService, error) {
	source, err := wireTaobao(a.Log, a.Cfg)
	if err != nil {
		return nil, err
	}
	return services.NewFetchService(a.Log, source, a.Repos.Item), nil
}

func (a *App) CreativeService() (services.CreativeService, error) {
	llm, err := wireLLM(a.Log, a.Cfg)
	if err != nil {
		return nil, err
	}
	catalog, err := prompts.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	writer := creative.NewWriter(a.Log, llm, catalog)
	return services.NewCreativeService(a.DB, a.Log, writer, a.Repos.Item, a.Repos.Creative), nil
}
