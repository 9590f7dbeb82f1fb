package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/clientpulse/pulse-core/internal/domain/ports"
	"github.com/clientpulse/pulse-core/internal/domain/services"
	"github.com/clientpulse/pulse-core/internal/infrastructure/config"
	"github.com/clientpulse/pulse-core/internal/infrastructure/crm/hubspot"
	"github.com/clientpulse/pulse-core/internal/infrastructure/crm/salesforce"
	"github.com/clientpulse/pulse-core/internal/infrastructure/docstore/sqlite"
	embedder "github.com/clientpulse/pulse-core/internal/infrastructure/embedder/openai"
	"github.com/clientpulse/pulse-core/internal/infrastructure/evidencedb/qdrant"
	narrative "github.com/clientpulse/pulse-core/internal/infrastructure/narrative/openai"
	"github.com/clientpulse/pulse-core/internal/infrastructure/notify/slack"
	"github.com/clientpulse/pulse-core/internal/workflow"
)

// Deps holds the wired dependency graph for commands.
type Deps struct {
	Config   *config.Config
	TenantID string

	Store     *sqlite.Repository
	Evidence  *qdrant.Repository
	Narrative *narrative.Client
	Notifier  *slack.Notifier

	Engine     *workflow.Engine
	Scoring    *services.ScoringEngine
	Ingestion  *workflow.IngestionProcess
	Discovery  *workflow.DiscoveryProcess
	Review     *workflow.ReviewProcess
	Activation *workflow.ActivationProcess
	Monitoring *workflow.MonitoringProcess
}

// withDeps loads config and builds dependencies, then calls the provided
// function. It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewRepository(config.SQLiteConfig{Path: cfg.SQLitePath(cwd)})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	evidenceDB, err := qdrant.NewRepository(cfg.Qdrant)
	if err != nil {
		return fmt.Errorf("creating qdrant repository: %w", err)
	}
	defer evidenceDB.Close()

	emb, err := embedder.NewEmbedder(cfg.Embedder)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	narrativeClient, err := narrative.NewClient(cfg.LLM)
	if err != nil {
		return fmt.Errorf("creating narrative client: %w", err)
	}

	notifier := slack.NewNotifier(cfg.Slack)

	engine := workflow.NewEngine()
	evidenceService := services.NewEvidenceService(emb, evidenceDB)
	scoring := services.NewScoringEngine(store)

	discovery := workflow.NewDiscoveryProcess(engine, store, evidenceService, scoring, narrativeClient)
	ingestion := workflow.NewIngestionProcess(engine, store, discovery)
	review := workflow.NewReviewProcess(engine, store, scoring, notifier,
		time.Duration(cfg.Review.TimeoutHours)*time.Hour)
	activation := workflow.NewActivationProcess(engine, store, crmClients(cfg), notifier)
	monitoring := workflow.NewMonitoringProcess(engine, store, spoolSearch(cwd), ingestion)

	deps := &Deps{
		Config:     cfg,
		TenantID:   cfg.Tenant.ID,
		Store:      store,
		Evidence:   evidenceDB,
		Narrative:  narrativeClient,
		Notifier:   notifier,
		Engine:     engine,
		Scoring:    scoring,
		Ingestion:  ingestion,
		Discovery:  discovery,
		Review:     review,
		Activation: activation,
		Monitoring: monitoring,
	}

	return fn(deps)
}

// crmClients builds a client per configured CRM system. Systems without
// credentials are skipped; activation reports them as not configured.
func crmClients(cfg *config.Config) []ports.CRMClient {
	var clients []ports.CRMClient

	if cfg.CRM.Salesforce.Token != "" {
		if client, err := salesforce.NewClient(cfg.CRM.Salesforce); err == nil {
			clients = append(clients, client)
		}
	}
	if cfg.CRM.Hubspot.Token != "" {
		if client, err := hubspot.NewClient(cfg.CRM.Hubspot); err == nil {
			clients = append(clients, client)
		}
	}
	return clients
}

// requireAccount returns the account id from the global flag.
func requireAccount() (string, error) {
	if globalAccount == "" {
		return "", errors.New("account is required (use --account flag)")
	}
	return globalAccount, nil
}
