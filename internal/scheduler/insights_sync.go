package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/insights-ingestor/internal/config"
	"github.com/vfg2006/insights-ingestor/internal/domain"
	"github.com/vfg2006/insights-ingestor/internal/usecases/ingesting"
	"github.com/vfg2006/insights-ingestor/pkg/utils"
)

// InsightSyncConfig representa a configuração do agendador de insights
type InsightSyncConfig struct {
	CronSchedule  string
	Levels        []domain.ReportingLevel
	LookbackDays  int
	RetentionDays int
	SyncEnabled   bool
}

// LevelSyncResult guarda o resultado da última sincronização de um nível
type LevelSyncResult struct {
	RunID      string    `json:"run_id,omitempty"`
	Stored     int       `json:"stored"`
	Skipped    int       `json:"skipped"`
	Warnings   int       `json:"warnings"`
	Pruned     int64     `json:"pruned"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// InsightSyncService agenda a ingestão diária dos níveis configurados
type InsightSyncService struct {
	scheduler *gocron.Scheduler
	config    InsightSyncConfig
	ingester  ingesting.Ingester
	now       func() time.Time

	baseCtx             context.Context
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastResults         map[domain.ReportingLevel]LevelSyncResult
}

// NewInsightSyncService cria o agendador; níveis inválidos na configuração são erro
func NewInsightSyncService(ingester ingesting.Ingester, appConfig *config.Config) (*InsightSyncService, error) {
	levels, err := appConfig.SyncLevels()
	if err != nil {
		return nil, err
	}

	syncConfig := InsightSyncConfig{
		CronSchedule:  appConfig.InsightsSync.CronSchedule,
		Levels:        levels,
		LookbackDays:  appConfig.InsightsSync.LookbackDays,
		RetentionDays: appConfig.InsightsSync.RetentionDays,
		SyncEnabled:   appConfig.InsightsSync.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":  syncConfig.CronSchedule,
		"levels":         syncConfig.Levels,
		"lookback_days":  syncConfig.LookbackDays,
		"retention_days": syncConfig.RetentionDays,
		"sync_enabled":   syncConfig.SyncEnabled,
	}).Info("scheduler: configuração do agendador de insights carregada")

	return &InsightSyncService{
		scheduler:   gocron.NewScheduler(time.Local),
		config:      syncConfig,
		ingester:    ingester,
		now:         time.Now,
		baseCtx:     context.Background(),
		lastResults: make(map[domain.ReportingLevel]LevelSyncResult),
	}, nil
}

// Start inicia o agendador
func (s *InsightSyncService) Start(ctx context.Context) error {
	s.baseCtx = ctx

	if !s.config.SyncEnabled {
		logrus.Info("scheduler: sincronização de insights desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("scheduler: iniciando agendador de insights")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.SyncAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de insights: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("scheduler: parando agendador de insights")
		s.scheduler.Stop()
	}()

	return nil
}

// SyncAll executa a ingestão de cada nível em sequência. Execuções sobrepostas são ignoradas.
func (s *InsightSyncService) SyncAll(ctx context.Context) {
	if !s.acquire() {
		logrus.Info("scheduler: sincronização de insights já em andamento, ignorando")
		return
	}
	defer s.release()

	startTime := s.now()
	since, until := utils.LookbackWindow(startTime, s.config.LookbackDays)
	window := domain.DateWindow{Since: &since, Until: &until}

	logrus.WithFields(logrus.Fields{
		"levels":     s.config.Levels,
		"start_date": since.Format(time.DateOnly),
		"end_date":   until.Format(time.DateOnly),
	}).Info("scheduler: iniciando sincronização de insights")

	for _, level := range s.config.Levels {
		if ctx.Err() != nil {
			logrus.WithError(ctx.Err()).Warn("scheduler: sincronização interrompida")
			break
		}
		s.syncLevel(ctx, level, window)
	}

	s.syncMutex.Lock()
	s.lastSyncCompletedAt = s.now()
	s.syncMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"duration": time.Since(startTime).String(),
		"levels":   len(s.config.Levels),
	}).Info("scheduler: sincronização de insights concluída")
}

func (s *InsightSyncService) syncLevel(ctx context.Context, level domain.ReportingLevel, window domain.DateWindow) {
	outcome := LevelSyncResult{}

	result, err := s.ingester.Run(ctx, level, window)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"level": level,
			"error": err.Error(),
		}).Error("scheduler: erro ao sincronizar insights do nível")
		outcome.Error = err.Error()
	} else {
		outcome.RunID = result.RunID
		outcome.Stored = len(result.Data)
		outcome.Skipped = result.Skipped
		outcome.Warnings = len(result.Warnings)
	}

	if s.config.RetentionDays > 0 {
		pruned, err := s.ingester.Prune(ctx, level, s.config.RetentionDays)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"level": level,
				"error": err.Error(),
			}).Error("scheduler: erro ao aplicar retenção")
			if outcome.Error == "" {
				outcome.Error = err.Error()
			}
		}
		outcome.Pruned = pruned
	}

	outcome.FinishedAt = s.now()

	s.syncMutex.Lock()
	s.lastResults[level] = outcome
	s.syncMutex.Unlock()
}

func (s *InsightSyncService) acquire() bool {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if s.syncRunning {
		return false
	}
	s.syncRunning = true
	s.lastSyncStartedAt = s.now()
	return true
}

func (s *InsightSyncService) release() {
	s.syncMutex.Lock()
	s.syncRunning = false
	s.syncMutex.Unlock()
}

// IsRunning informa se há sincronização em andamento
func (s *InsightSyncService) IsRunning() bool {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()
	return s.syncRunning
}

// TriggerManualSync dispara uma sincronização em background; retorna false se já houver uma em andamento
func (s *InsightSyncService) TriggerManualSync() bool {
	if s.IsRunning() {
		logrus.Info("scheduler: sincronização já em andamento, ignorando solicitação manual")
		return false
	}

	logrus.Info("scheduler: iniciando sincronização manual de insights")
	go s.SyncAll(s.baseCtx)
	return true
}

// GetStatus retorna o status atual do agendador
func (s *InsightSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	results := make(map[string]LevelSyncResult, len(s.lastResults))
	for level, result := range s.lastResults {
		results[string(level)] = result
	}

	retention := "dados mantidos permanentemente"
	if s.config.RetentionDays > 0 {
		retention = fmt.Sprintf("%d dias", s.config.RetentionDays)
	}

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_levels":            s.config.Levels,
		"sync_lookback_days":     s.config.LookbackDays,
		"sync_running":           s.syncRunning,
		"retention_policy":       retention,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_results":           results,
	}
}
