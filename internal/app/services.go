package app

import (
	"github.com/yungbote/glucobridge-backend/internal/jobs/worker"
	"github.com/yungbote/glucobridge-backend/internal/modules/metabolic"
	"github.com/yungbote/glucobridge-backend/internal/modules/prediction"
	"github.com/yungbote/glucobridge-backend/internal/modules/prediction/explain"
	"github.com/yungbote/glucobridge-backend/internal/observability"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
	"github.com/yungbote/glucobridge-backend/internal/services"
	"github.com/yungbote/glucobridge-backend/internal/temporalx/profilerefresh"
)

type Services struct {
	Analyze          services.AnalyzeService
	Explanation      services.ExplanationService
	MetabolicProfile services.MetabolicProfileService
	ProfileWorker    *worker.Worker
}

func wireServices(log *logger.Logger, cfg Config, repoSet Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	engine := prediction.NewEngine(prediction.LoadConstants(log))

	var providers []explain.Provider
	if clients.OpenAI != nil {
		providers = append(providers, explain.NewOpenAIProvider(clients.OpenAI, cfg.ExplainTimeout))
	}
	if clients.Gemini != nil {
		providers = append(providers, explain.NewGeminiProvider(clients.Gemini, cfg.ExplainTimeout))
	}
	chain := explain.NewChain(log, providers...)
	explainer := services.NewExplanationService(log, chain, metrics, cfg.ExplainTimeout)
	log.Info("Explanation providers configured", "providers", explainer.Providers())

	analyze := services.NewAnalyzeService(log, services.AnalyzeDeps{
		Engine:      engine,
		Explainer:   explainer,
		GlucoseLogs: repoSet.GlucoseLog,
		Meals:       repoSet.MealLog,
		Reviews:     repoSet.MealReview,
		Activities:  repoSet.ActivityLog,
		Daily:       repoSet.DailyMetric,
		Calibration: repoSet.Calibration,
		Cache:       repoSet.AnalysisCache,
		Front:       clients.AnalysisCache,
		CacheTTL:    cfg.AnalyzeCacheTTL,
		Metrics:     metrics,
	})

	profiles := services.NewMetabolicProfileService(
		log,
		metabolic.NewBuilder(metabolic.ConfigFromEnv()),
		repoSet.DailyMetric,
		repoSet.MetabolicProfile,
		metrics,
		cfg.ProfileRefreshConcurrency,
	)

	workerCfg := worker.ConfigFromEnv()
	workerCfg.CacheTTL = cfg.AnalyzeCacheTTL
	w := worker.NewWorker(log, profiles, workerCfg).WithCachePruner(repoSet.AnalysisCache)
	if clients.Temporal != nil {
		w = w.WithDispatcher(profilerefresh.NewDispatcher(clients.Temporal, clients.TemporalCfg.TaskQueue))
	}

	return Services{
		Analyze:          analyze,
		Explanation:      explainer,
		MetabolicProfile: profiles,
		ProfileWorker:    w,
	}
}
