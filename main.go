// package main provides the entry point for the integrity-backend microservice:
// the exam lifecycle API, proctoring assessment, and the monitoring GraphQL API.
package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/examguard/integrity-backend/database"
	"github.com/examguard/integrity-backend/events/modules/proctoring"
	"github.com/examguard/integrity-backend/internal/api"
	"github.com/examguard/integrity-backend/internal/audit"
	"github.com/examguard/integrity-backend/internal/detection"
	"github.com/examguard/integrity-backend/internal/kafka"
	"github.com/examguard/integrity-backend/internal/policy"
	"github.com/examguard/integrity-backend/internal/ratelimit"
	"github.com/examguard/integrity-backend/internal/session"
	"github.com/examguard/integrity-backend/restapi"
	"github.com/examguard/integrity-backend/util"
)

func main() {
	// Initialize database connection
	db := database.InitializeDatabase()
	logger := database.Logger()

	// Enforcement policy (compiled defaults, optional YAML overlay)
	pol := policy.FromEnv()

	// In-process services
	auditLog := audit.New(pol.AuditCapacity, logger)

	var producer *proctoring.Producer
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		topic := util.GetEnvDefault("KAFKA_NOTIFY_TOPIC", "exam-notifications")
		producer = proctoring.NewProducer(strings.Split(brokers, ","), topic)
		defer producer.Close()
	}
	dispatcher := proctoring.NewDispatcher(producer, logger)

	detector := detection.New(pol, logger, dispatcher.NotifySecurityEvent)
	sessions := session.New(detector, auditLog, pol, logger, database.ExamWindowLookup(db))
	limiter := ratelimit.New(pol.RateLimits)

	// Stale rate-limit buckets and finished security sessions accumulate one
	// entry per principal; evict anything idle for over an hour.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-time.Hour)
			limiter.Prune(cutoff)
			sessions.Prune(cutoff)
		}
	}()

	// Event bus ingestion mirrors the HTTP assessment path
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if os.Getenv("KAFKA_BROKERS") != "" {
		if err := kafka.RunEventProcessor(ctx, sessions); err != nil {
			log.Printf("WARNING: Kafka event processor unavailable: %v", err)
		}
	}

	app := api.NewFiberApp(db, restapi.Services{
		Sessions:   sessions,
		Detector:   detector,
		Audit:      auditLog,
		Limiter:    limiter,
		Dispatcher: dispatcher,
	})

	// Get port from environment or default to 3000
	port := os.Getenv("MS_PORT")
	if port == "" {
		port = "3000"
	}

	// Start server
	log.Printf("Starting server on port %s", port)
	log.Printf("GraphQL endpoint available at /api/v1/graphql")
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
