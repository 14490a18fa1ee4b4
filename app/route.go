package app

import (
	"net/http"
	"sync"

	"infini-manager/config"
	"infini-manager/controllers"
	"infini-manager/database"
	"infini-manager/services"
	"infini-manager/utility/logger"

	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
	httpSwagger "github.com/swaggo/http-swagger"
	validation "gopkg.in/go-playground/validator.v9"
)

var (
	once sync.Once
)

// RegisterRoutes ... Wires repositories, services and controllers onto the router
func RegisterRoutes(router *mux.Router, validator *validation.Validate, configData config.Data, db *gorm.DB, executor services.TransferExecutor, locker services.ILocker) {

	once.Do(func() {
		batchTransferRepository := &database.BatchTransferRepository{}
		batchTransferRepository.Config = configData
		batchTransferRepository.DB = db

		batchTransferService := services.NewBatchTransferService(configData, batchTransferRepository, executor, locker)

		controller := controllers.NewController(configData)
		batchTransferController := controllers.NewBatchTransferController(configData, validator, batchTransferService)

		baseURL := "/api/v1"

		apiRouter := router.PathPrefix(baseURL).Subrouter()
		router.PathPrefix("/swagger").Handler(httpSwagger.WrapHandler)

		// General Routes
		apiRouter.HandleFunc("/ping", controller.Ping).Methods(http.MethodGet)

		// Batch Transfer Routes
		apiRouter.HandleFunc("/batch-transfers", batchTransferController.CreateBatchTransfer).Methods(http.MethodPost)
		apiRouter.HandleFunc("/batch-transfers", batchTransferController.ListBatchTransfers).Methods(http.MethodGet)
		apiRouter.HandleFunc("/batch-transfers/relations/{relationId}/retry", batchTransferController.RetryTransferRelation).Methods(http.MethodPost)
		apiRouter.HandleFunc("/batch-transfers/{batchId}", batchTransferController.GetBatchTransfer).Methods(http.MethodGet)
		apiRouter.HandleFunc("/batch-transfers/{batchId}/execute", batchTransferController.ExecuteBatchTransfer).Methods(http.MethodPost)
		apiRouter.HandleFunc("/batch-transfers/{batchId}/resume", batchTransferController.ResumeBatchTransfer).Methods(http.MethodPost)
		apiRouter.HandleFunc("/batch-transfers/{batchId}/retry-failed", batchTransferController.RetryFailedTransfers).Methods(http.MethodPost)
		apiRouter.HandleFunc("/batch-transfers/{batchId}/close", batchTransferController.CloseBatchTransfer).Methods(http.MethodPost)
		apiRouter.HandleFunc("/batch-transfers/{batchId}/relations", batchTransferController.ListBatchTransferRelations).Methods(http.MethodGet)
		apiRouter.HandleFunc("/batch-transfers/{batchId}/progress", batchTransferController.GetBatchTransferProgress).Methods(http.MethodGet)
		apiRouter.HandleFunc("/batch-transfers/{batchId}/histories", batchTransferController.ListBatchTransferHistories).Methods(http.MethodGet)
	})

	logger.Info("App routes registered successfully!")
}
