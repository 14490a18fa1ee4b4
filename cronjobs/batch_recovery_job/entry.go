package main

import (
	"fmt"
	"time"

	Config "infini-manager/config"
	"infini-manager/database"
	"infini-manager/services"
	"infini-manager/tasks"
	"infini-manager/utility/cache"

	"github.com/go-redis/redis/v7"
)

func main() {
	fmt.Println("Starting Batch Recovery Job")

	config := Config.Data{}
	config.Init("")

	Database := &database.Database{
		Config: config,
	}
	Database.LoadDBInstance()
	defer Database.CloseDBInstance()

	purgeInterval := time.Duration(config.PurgeCacheInterval) * time.Second
	cacheDuration := time.Duration(config.ExpireCacheDuration) * time.Second
	authCache := cache.Initialize(cacheDuration, purgeInterval)

	baseRepository := database.BaseRepository{Database: *Database}
	batchTransferRepository := &database.BatchTransferRepository{BaseRepository: baseRepository}

	executor := services.NewTransferService(authCache, config)

	var locker services.ILocker
	if config.RedisAddress == "" {
		locker = services.NewMemoryLocker()
	} else {
		locker = services.NewLockerService(redis.NewClient(&redis.Options{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
		}))
	}

	tasks.RecoverStuckBatches(config, batchTransferRepository, executor, locker)
}
