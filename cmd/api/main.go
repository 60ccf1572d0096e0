package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/insights-ingestor/infrastructure/database/postgres"
	"github.com/vfg2006/insights-ingestor/infrastructure/integrator/meta"
	"github.com/vfg2006/insights-ingestor/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/insights-ingestor/infrastructure/repository"
	"github.com/vfg2006/insights-ingestor/internal/api"
	"github.com/vfg2006/insights-ingestor/internal/config"
	"github.com/vfg2006/insights-ingestor/internal/metrics"
	"github.com/vfg2006/insights-ingestor/internal/scheduler"
	"github.com/vfg2006/insights-ingestor/internal/usecases/ingesting"
	"github.com/vfg2006/insights-ingestor/pkg/log"
)

func main() {
	log.Setup("info")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	log.Setup(cfg.App.LogLevel)
	logrus.Infof("Nível de log configurado para: %s", logrus.GetLevel())

	// credenciais ausentes não impedem a subida; cada execução responde com o erro de configuração
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Warn("Configuração incompleta, as ingestões vão falhar até ser corrigida")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.NewMetrics(registry)

	insightRepo := repository.NewInsightRepository(pgConn)

	metaClient := metaclient.NewClient(cfg, nil)
	metaIntegrator := meta.New(cfg, metaClient)

	ingestService := ingesting.NewService(cfg, metaIntegrator, metaIntegrator, insightRepo, appMetrics)

	insightSyncService, err := scheduler.NewInsightSyncService(ingestService, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao configurar o agendador de sincronização de insights")
	}

	if err := insightSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de insights")
	} else {
		logrus.Info("Agendador de sincronização de insights iniciado com sucesso")
	}

	server, err := api.New(cfg, ingestService, insightSyncService, pgConn, appMetrics)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
