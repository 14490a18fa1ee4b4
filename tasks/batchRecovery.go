package tasks

import (
	"time"

	Config "infini-manager/config"
	"infini-manager/database"
	"infini-manager/services"
	"infini-manager/utility"
	"infini-manager/utility/logger"

	"github.com/robfig/cron/v3"
)

// RecoverStuckBatches ... Finds batches left in processing with no recent relation activity and
// resumes them, reclaiming relations stranded by a crash mid-pass.
func RecoverStuckBatches(config Config.Data, repository database.IBatchTransferRepository, executor services.TransferExecutor, locker services.ILocker) {
	logger.Info("Batch recovery operation begins")

	waitTime := config.StuckRelationWaitTime
	if waitTime <= 0 {
		waitTime = utility.MIN_WAIT_TIME_IN_PROCESSING
	}
	staleBefore := time.Now().Add(-time.Duration(waitTime) * time.Second)

	stuckBatches, err := repository.FetchStuckBatches(staleBefore)
	if err != nil {
		logger.Error("Error response from batch recovery job : could not fetch stuck batches %+v", err)
		return
	}
	if len(stuckBatches) == 0 {
		logger.Info("Batch recovery operation ends : no stuck batches found")
		return
	}

	batchTransferService := services.NewBatchTransferService(config, repository, executor, locker)
	for _, batch := range stuckBatches {
		response, err := batchTransferService.ResumeBatchTransfer(batch.ID, false)
		if err != nil {
			logger.Error("Error response from batch recovery job : batch %d could not be resumed > %s", batch.ID, err)
			continue
		}
		logger.Info("Batch recovery job : batch %d resumed, now %s with %d completed / %d failed", batch.ID, response.Status, response.SuccessCount, response.FailedCount)
	}

	logger.Info("Batch recovery operation ends")
}

// ExecuteCronJob ... Schedules the recovery sweep on the configured interval
func ExecuteCronJob(config Config.Data, repository database.IBatchTransferRepository, executor services.TransferExecutor, locker services.ILocker) {
	c := cron.New()
	c.AddFunc(config.RecoveryCronInterval, func() { RecoverStuckBatches(config, repository, executor, locker) })
	c.Start()
}
