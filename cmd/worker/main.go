package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"article-server/internal/ai"
	"article-server/internal/config"
	"article-server/internal/database"
	"article-server/internal/logger"
	"article-server/internal/messaging"
	"article-server/internal/models"
	"article-server/internal/pipeline"
	"article-server/internal/repository"
	"article-server/internal/validation"
	"article-server/internal/worker"
)

const (
	dlxName       = "article_generation_tasks_dlx"
	dlqName       = "article_generation_tasks_dlq"
	dlqRoutingKey = "dlq"
	consumerTag   = "article-generation-worker"

	rabbitMaxRetries = 5
	rabbitRetryDelay = 5 * time.Second
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("Starting article generation worker")

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// PostgreSQL
	dbPool, err := database.Connect(rootCtx, cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()

	if err := database.ApplyMigrations(dbPool); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}
	log.Info("Database migrations applied")

	// Redis, used for cooperative abort flags.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(rootCtx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	log.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))

	// RabbitMQ
	conn, err := connectRabbitMQ(cfg.RabbitMQURL, log)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("Failed to open RabbitMQ channel", zap.Error(err))
	}
	defer ch.Close()

	if err := declareQueues(ch, cfg.TaskQueueName); err != nil {
		log.Fatal("Failed to declare queues", zap.Error(err))
	}
	if err := ch.Qos(1, 0, false); err != nil {
		log.Fatal("Failed to set QoS", zap.Error(err))
	}

	// Provider registry: only credentialed providers are registered, the
	// router falls back across whatever is available.
	registry := ai.NewRegistry()
	registerProviders(registry, cfg, log)
	if registry.Len() == 0 {
		log.Warn("No AI providers configured; every task will fail until credentials are provided")
	}

	router := ai.NewRouter(registry, log, ai.RouterOptions{
		MaxRetries:  cfg.AIMaxRetries,
		CallTimeout: cfg.AICallTimeout,
	})

	validator := validation.NewHTTPValidatorClient(cfg.ValidatorBaseURL, cfg.ValidatorTimeout, log)
	gate := validation.NewGate(router, validator, log, cfg.ValidationBackoff)

	jobRepo := repository.NewPgJobRepository(dbPool, log)
	sectionRepo := repository.NewPgSectionRepository(dbPool, log)
	abortRepo := repository.NewRedisAbortRepository(redisClient, log)

	orchestrator := pipeline.NewOrchestrator(jobRepo, sectionRepo, gate, log)

	notifier, err := messaging.NewRabbitMQNotifier(ch, cfg.UpdatesQueue, log)
	if err != nil {
		log.Fatal("Failed to create notifier", zap.Error(err))
	}

	handler := worker.NewTaskHandler(orchestrator, jobRepo, sectionRepo, abortRepo, notifier, worker.Defaults{
		Preset:           cfg.DefaultPreset,
		RespectTopicType: cfg.RespectTopicType,
		ValidationMode:   models.ValidationMode(cfg.ValidationMode),
		MaxRetries:       cfg.ValidationRetries,
		SectionDelay:     cfg.SectionDelay,
	}, log)

	metricsServer := startMetricsServer(cfg.MetricsPort, log)

	msgs, err := ch.Consume(cfg.TaskQueueName, consumerTag, false, false, false, false, nil)
	if err != nil {
		log.Fatal("Failed to register consumer", zap.Error(err))
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumeLoop(rootCtx, msgs, handler, log)
	}()

	log.Info("Worker is running", zap.String("queue", cfg.TaskQueueName))

	select {
	case sig := <-stopChan:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case <-done:
		log.Warn("Message channel closed unexpectedly")
	}

	// Stop taking new deliveries, let the in-flight task finish.
	if err := ch.Cancel(consumerTag, false); err != nil {
		log.Warn("Failed to cancel consumer", zap.Error(err))
	}
	rootCancel()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Metrics server shutdown failed", zap.Error(err))
	}

	log.Info("Worker stopped")
}

// consumeLoop processes deliveries one at a time. A failed task is
// dead-lettered rather than requeued to avoid poison-message loops.
func consumeLoop(ctx context.Context, msgs <-chan amqp.Delivery, handler *worker.TaskHandler, log *zap.Logger) {
	for msg := range msgs {
		var payload messaging.ArticleGenerationTaskPayload
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			log.Error("Failed to decode task payload, dead-lettering", zap.Error(err))
			msg.Nack(false, false)
			continue
		}

		if err := handler.Handle(ctx, payload); err != nil {
			log.Error("Task failed, dead-lettering",
				zap.String("task_id", payload.TaskID), zap.Error(err))
			msg.Nack(false, false)
			continue
		}
		msg.Ack(false)
	}
}

// declareQueues sets up the DLX/DLQ pair and the main task queue routed to it.
func declareQueues(ch *amqp.Channel, taskQueue string) error {
	if err := ch.ExchangeDeclare(dlxName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(dlqName, dlqRoutingKey, dlxName, false, nil); err != nil {
		return err
	}

	_, err := ch.QueueDeclare(taskQueue, true, false, false, false, amqp.Table{
		"x-queue-mode":              "lazy",
		"x-dead-letter-exchange":    dlxName,
		"x-dead-letter-routing-key": dlqRoutingKey,
	})
	return err
}

// connectRabbitMQ dials the broker with a few retries so the worker survives
// a broker that is still starting up.
func connectRabbitMQ(url string, log *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for attempt := 1; attempt <= rabbitMaxRetries; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		log.Warn("RabbitMQ connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", rabbitMaxRetries),
			zap.Error(err))
		time.Sleep(rabbitRetryDelay)
	}
	return nil, err
}

func registerProviders(registry *ai.Registry, cfg *config.Config, log *zap.Logger) {
	if cfg.OpenRouterAPIKey != "" {
		client, err := ai.NewProviderClient(ai.ClientConfig{
			Provider: "openrouter",
			APIKey:   cfg.OpenRouterAPIKey,
			BaseURL:  cfg.OpenRouterBaseURL,
			Model:    cfg.OpenRouterModel,
			Timeout:  cfg.AICallTimeout,
		}, log)
		if err != nil {
			log.Warn("Skipping openrouter provider", zap.Error(err))
		} else {
			registry.Register(client)
			log.Info("Registered AI provider", zap.String("provider", "openrouter"), zap.String("model", cfg.OpenRouterModel))
		}
	}

	if cfg.OpenAIAPIKey != "" {
		client, err := ai.NewProviderClient(ai.ClientConfig{
			Provider: "openai",
			APIKey:   cfg.OpenAIAPIKey,
			BaseURL:  cfg.OpenAIBaseURL,
			Model:    cfg.OpenAIModel,
			Timeout:  cfg.AICallTimeout,
		}, log)
		if err != nil {
			log.Warn("Skipping openai provider", zap.Error(err))
		} else {
			registry.Register(client)
			log.Info("Registered AI provider", zap.String("provider", "openai"), zap.String("model", cfg.OpenAIModel))
		}
	}

	if cfg.OllamaBaseURL != "" {
		client, err := ai.NewProviderClient(ai.ClientConfig{
			Provider: "ollama",
			BaseURL:  cfg.OllamaBaseURL,
			Model:    cfg.OllamaModel,
			Timeout:  cfg.AICallTimeout,
		}, log)
		if err != nil {
			log.Warn("Skipping ollama provider", zap.Error(err))
		} else {
			registry.Register(client)
			log.Info("Registered AI provider", zap.String("provider", "ollama"), zap.String("model", cfg.OllamaModel))
		}
	}
}

func startMetricsServer(port string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Metrics server listening", zap.String("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Metrics server failed", zap.Error(err))
		}
	}()

	return server
}
