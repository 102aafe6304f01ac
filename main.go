package main

import (
	"context"
	"os"

	"github.com/Massamba505/Events-Api/api"
	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/service/catalog"
	"github.com/Massamba505/Events-Api/service/issuance"
	"github.com/Massamba505/Events-Api/service/mail"
	"github.com/Massamba505/Events-Api/service/notify"
	"github.com/Massamba505/Events-Api/service/payment"
	"github.com/Massamba505/Events-Api/service/security"
	"github.com/Massamba505/Events-Api/service/uploader"
	"github.com/Massamba505/Events-Api/service/worker"
	"github.com/Massamba505/Events-Api/util"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load config
	config := util.LoadConfig(".env")

	ctx := context.Background()

	// Connect to database and Redis
	queries := db.NewQueries()
	if err := queries.ConnectDB(ctx, config.MongoURI, config.DbName); err != nil {
		util.LOGGER.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}

	if err := queries.EnsureIndexes(ctx); err != nil {
		util.LOGGER.Error("Error creating indexes", "error", err)
		os.Exit(1)
	}
	if err := queries.SeedEventCounter(ctx); err != nil {
		util.LOGGER.Error("Error seeding event ID counter", "error", err)
		os.Exit(1)
	}

	if err := queries.ConnectRedis(ctx, &redis.Options{Addr: config.RedisAddr}); err != nil {
		util.LOGGER.Error("Error connecting to Redis", "error", err)
		os.Exit(1)
	}

	payment.InitStripe(config.StripeSecretKey)

	// Create dependencies for server
	jwtService := security.NewJWTService(config.SecretKey, config.TokenExpiration)
	distributor := worker.NewRedisTaskDistributor(asynq.RedisClientOpt{Addr: config.RedisAddr})
	mailService := mail.NewEmailService(config.Email, config.AppPassword)
	cld, err := uploader.NewCld(config.CloudName, config.CloudKey, config.CloudSecret)
	if err != nil {
		util.LOGGER.Error("failed to initialize Cloudinary service", "error", err)
		os.Exit(1)
	}

	engine := issuance.NewEngine(queries, config.BaseURL)
	eventCatalog := catalog.New(queries)
	notifier := notify.NewNotifier(queries, distributor)

	// Start the background processor in a separate goroutine (it blocks)
	go StartBackgroundProcessor(asynq.RedisClientOpt{Addr: config.RedisAddr}, queries, mailService)

	// Start server
	server := api.NewServer(queries, config, jwtService, engine, eventCatalog, notifier, cld)
	if err := server.Start(); err != nil {
		util.LOGGER.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

func StartBackgroundProcessor(
	redisOpts asynq.RedisClientOpt,
	queries *db.Queries,
	mailService mail.MailService,
) error {
	// Create the processor
	processor := worker.NewRedisTaskProcessor(redisOpts, queries, mailService)

	// Start process tasks
	return processor.Start()
}
