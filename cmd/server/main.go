// Command server runs the proofgate verification gateway: session creation
// for reliers, proof verification for provers, and profile enrichment for the
// display layer.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"proofgate/internal/platform/config"
	"proofgate/internal/platform/httpserver"
	"proofgate/internal/platform/logger"
	"proofgate/internal/platform/metrics"
	platformredis "proofgate/internal/platform/redis"
	"proofgate/internal/policy"
	"proofgate/internal/profile"
	profilehandler "proofgate/internal/profile/handler"
	profilemetrics "proofgate/internal/profile/metrics"
	"proofgate/internal/receipt"
	"proofgate/internal/session"
	sessionhandler "proofgate/internal/session/handler"
	httptransport "proofgate/internal/transport/http"
	"proofgate/internal/verifier"
	"proofgate/internal/verifier/adapters/devstub"
	verifyhandler "proofgate/internal/verifier/handler"
	verifiermetrics "proofgate/internal/verifier/metrics"
	"proofgate/internal/verifier/ports"
	"proofgate/internal/verifier/store/replay"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/platform/audit"
	"proofgate/pkg/platform/audit/publisher"
	auditkafka "proofgate/pkg/platform/audit/publishers/kafka"
	auditmemory "proofgate/pkg/platform/audit/store/memory"
	auditpostgres "proofgate/pkg/platform/audit/store/postgres"
)

// nullifierTTL bounds how long consumed nullifiers are remembered. Proof
// correlation tokens are single-session, so a day is generous.
const nullifierTTL = 24 * time.Hour

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	platformMetrics := metrics.New()

	// Replay prevention: Redis when configured, in-process otherwise.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	var replayStore ports.ReplayStore
	healthChecks := map[string]func(ctx context.Context) error{}
	if redisClient != nil {
		replayStore = replay.NewRedisStore(redisClient.Client, nullifierTTL)
		healthChecks["redis"] = redisClient.Health
		defer redisClient.Close()
	} else {
		log.Warn("no redis configured, replay prevention is per-instance only")
		replayStore = replay.NewInMemoryStore(nullifierTTL)
	}

	// Audit pipeline: Postgres store when configured, memory otherwise;
	// optional Kafka fan-out.
	var auditStore audit.Store
	if cfg.Postgres.URL != "" {
		pool, err := auditpostgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		auditStore = auditpostgres.New(pool)
		healthChecks["postgres"] = pool.Ping
	} else {
		auditStore = auditmemory.NewInMemoryStore()
	}

	publisherOpts := []publisher.Option{
		publisher.WithAsyncBuffer(1024),
		publisher.WithLogger(log),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := auditkafka.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		publisherOpts = append(publisherOpts, publisher.WithSink(sink))
	}
	auditPublisher := publisher.NewPublisher(auditStore, publisherOpts...)
	defer auditPublisher.Close()

	// The cryptographic checker is an injected external capability; without
	// one, only the explicitly insecure dev stub can serve, and it has to be
	// asked for.
	if !cfg.DevProofChecker {
		log.Error("no proof checker configured; set PROOFGATE_DEV_PROOF_CHECKER=true for local development")
		os.Exit(1)
	}
	checker := devstub.New(log)

	policyStore, err := policy.FromParams(policyParams(cfg.Policy))
	if err != nil {
		log.Error("invalid policy configuration", "error", err)
		os.Exit(1)
	}

	verifierService, err := verifier.NewService(
		checker,
		replayStore,
		policyStore,
		auditPublisher,
		log,
		verifiermetrics.New(),
		cfg.VerifyDeadline,
	)
	if err != nil {
		log.Error("verifier construction failed", "error", err)
		os.Exit(1)
	}

	broker, err := session.NewBroker(cfg.CallbackEndpoint)
	if err != nil {
		log.Error("invalid callback endpoint", "error", err)
		os.Exit(1)
	}

	receipts := receipt.New(cfg.ReceiptSigningKey, "proofgate", cfg.ReceiptTTL)

	profMetrics := profilemetrics.New()
	profileCache := profile.NewCache(profileFetcher(cfg.Profile, profMetrics, auditPublisher, log), cfg.Profile.CacheTTL, profMetrics)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		Metrics:      platformMetrics,
		Session:      sessionhandler.New(broker, auditPublisher, log, platformMetrics),
		Verify:       verifyhandler.New(verifierService, receipts, log),
		Profile:      profilehandler.New(profileCache, log),
		APIKeyHash:   cfg.APIKeyHash,
		Audit:        auditPublisher,
		HealthChecks: healthChecks,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting proofgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func policyParams(p config.Policy) policy.Params {
	params := policy.Params{
		ExcludedCountries: p.ExcludedCountries,
		SanctionsScreen:   p.SanctionsScreen,
	}
	if p.MinimumAge > 0 {
		age := p.MinimumAge
		params.MinimumAge = &age
	}
	for _, kind := range p.AttestationKinds {
		params.AcceptedAttestationKinds = append(params.AcceptedAttestationKinds, domain.AttestationKind(kind))
	}
	return params
}

// profileFetcher builds the upstream client, or a stand-in that reports the
// dependency as unavailable when no upstream is configured. The endpoint
// stays mounted either way so the wire surface is stable.
func profileFetcher(cfg config.ProfileConfig, m *profilemetrics.Metrics, auditor profile.Auditor, log *slog.Logger) profile.Fetcher {
	if cfg.UpstreamURL == "" {
		log.Warn("no profile upstream configured, profile lookups will fail as upstream errors")
		return unconfiguredFetcher{}
	}
	client, err := profile.NewUpstreamClient(cfg.UpstreamURL, cfg.FetchTimeout, m, auditor)
	if err != nil {
		log.Error("invalid profile upstream URL", "error", err)
		os.Exit(1)
	}
	return client
}

type unconfiguredFetcher struct{}

func (unconfiguredFetcher) Fetch(context.Context, domain.SubjectKey) (*profile.Document, error) {
	return nil, dErrors.New(dErrors.CodeUpstream, "profile upstream not configured")
}
