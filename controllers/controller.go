package controllers

import (
	"encoding/json"
	"net/http"

	"infini-manager/config"
	"infini-manager/services"
	"infini-manager/utility"
	"infini-manager/utility/appError"
	"infini-manager/utility/logger"

	validation "gopkg.in/go-playground/validator.v9"
)

// Controller : Controller struct
type Controller struct {
	Config config.Data
}

// BatchTransferController : Batch transfer controller struct
type BatchTransferController struct {
	Config    config.Data
	Validator *validation.Validate
	Service   *services.BatchTransferService
}

// NewController ... Create a new base controller instance
func NewController(configData config.Data) *Controller {
	controller := &Controller{}
	controller.Config = configData

	return controller
}

// NewBatchTransferController ... Create a new batch transfer controller instance
func NewBatchTransferController(configData config.Data, validator *validation.Validate, service *services.BatchTransferService) *BatchTransferController {
	controller := &BatchTransferController{}
	controller.Config = configData
	controller.Validator = validator
	controller.Service = service

	return controller
}

// Ping : Ping function
func (c *Controller) Ping(responseWriter http.ResponseWriter, requestReader *http.Request) {

	apiResponse := utility.NewResponse()

	logger.Info("Ping request successful! Server is up and listening")

	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(http.StatusOK)
	json.NewEncoder(responseWriter).Encode(apiResponse.PlainSuccess("SUCCESS", "Ping request successful! Server is up and listening"))
}

// ValidateRequest ... Runs struct tag validation on a decoded request body
func ValidateRequest(validator *validation.Validate, requestData interface{}) validation.ValidationErrors {
	if err := validator.Struct(requestData); err != nil {
		return err.(validation.ValidationErrors)
	}
	return nil
}

// ReturnError ... Writes an error response and logs the failed request
func ReturnError(responseWriter http.ResponseWriter, tag string, httpStatus int, err interface{}, response interface{}) {
	logger.Error("Outgoing response to %s request %+v", tag, err)
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(httpStatus)
	json.NewEncoder(responseWriter).Encode(response)
}

// ReturnServiceError ... Maps an application error onto the response envelope and http status
func ReturnServiceError(responseWriter http.ResponseWriter, tag string, err error) {
	apiResponse := utility.NewResponse()
	if appErr, ok := err.(appError.Err); ok {
		if appErr.ErrData != nil {
			ReturnError(responseWriter, tag, appErr.ErrCode, err, apiResponse.Error(appErr.ErrType, appErr.Error(), appErr.ErrData))
			return
		}
		ReturnError(responseWriter, tag, appErr.ErrCode, err, apiResponse.PlainError(appErr.ErrType, appErr.Error()))
		return
	}
	ReturnError(responseWriter, tag, http.StatusInternalServerError, err, apiResponse.PlainError("SYSTEM_ERR", utility.SYSTEM_ERR))
}
