package main

import (
	"log"
	"net/http"
	"time"

	"infini-manager/app"
	Config "infini-manager/config"
	"infini-manager/database"
	"infini-manager/middlewares"
	"infini-manager/services"
	"infini-manager/tasks"
	"infini-manager/utility/cache"
	"infini-manager/utility/logger"

	"github.com/go-redis/redis/v7"
	"github.com/gorilla/mux"
	validation "gopkg.in/go-playground/validator.v9"
)

func main() {
	config := Config.Data{}
	config.Init("")

	router := mux.NewRouter()
	validator := validation.New()

	Database := &database.Database{
		Config: config,
	}
	Database.LoadDBInstance()
	defer Database.CloseDBInstance()
	Database.RunDbMigrations()

	purgeInterval := time.Duration(config.PurgeCacheInterval) * time.Second
	cacheDuration := time.Duration(config.ExpireCacheDuration) * time.Second
	authCache := cache.Initialize(cacheDuration, purgeInterval)

	executor := services.NewTransferService(authCache, config)
	locker := buildLocker(config)

	app.RegisterRoutes(router, validator, config, Database.DB, executor, locker)

	if config.RecoveryCronInterval != "" {
		batchTransferRepository := &database.BatchTransferRepository{BaseRepository: database.BaseRepository{Database: *Database}}
		tasks.ExecuteCronJob(config, batchTransferRepository, executor, locker)
	}

	serviceAddress := ":" + config.AppPort

	middleware := middlewares.NewMiddleware(router).
		LogAPIRequests().
		Build()

	logger.Info("Server started and listening on port %s", config.AppPort)
	log.Fatal(http.ListenAndServe(serviceAddress, middleware))
}

// buildLocker ... Redis lock when an address is configured, in-process lock otherwise
func buildLocker(config Config.Data) services.ILocker {
	if config.RedisAddress == "" {
		logger.Warning("No redis address configured, batch operations are serialized in-process only")
		return services.NewMemoryLocker()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddress,
		Password: config.RedisPassword,
	})
	return services.NewLockerService(client)
}
