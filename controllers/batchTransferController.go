package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"infini-manager/dto"
	"infini-manager/utility"
	"infini-manager/utility/logger"

	"github.com/gorilla/mux"
)

// CreateBatchTransfer ... Creates a batch transfer with its relations, all or nothing
func (controller *BatchTransferController) CreateBatchTransfer(responseWriter http.ResponseWriter, requestReader *http.Request) {

	apiResponse := utility.NewResponse()
	requestData := dto.CreateBatchTransferRequest{}

	json.NewDecoder(requestReader.Body).Decode(&requestData)
	logger.Info("Incoming request details for CreateBatchTransfer : type : %s, relations : %d", requestData.Type, len(requestData.Relations))

	if validationErr := ValidateRequest(controller.Validator, requestData); len(validationErr) > 0 {
		ReturnError(responseWriter, "CreateBatchTransfer", http.StatusBadRequest, validationErr, apiResponse.ValidateError("INPUT_ERR", utility.VALIDATION_ERR, validationErr))
		return
	}

	responseData, err := controller.Service.CreateBatchTransfer(requestData)
	if err != nil {
		ReturnServiceError(responseWriter, "CreateBatchTransfer", err)
		return
	}

	logger.Info("Outgoing response to CreateBatchTransfer request %+v", responseData)
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(http.StatusCreated)
	json.NewEncoder(responseWriter).Encode(apiResponse.Successful("SUCCESS", utility.SUCCESS, responseData))
}

// ExecuteBatchTransfer ... Runs one execution pass over the pending relations of a batch
func (controller *BatchTransferController) ExecuteBatchTransfer(responseWriter http.ResponseWriter, requestReader *http.Request) {
	controller.runBatchOperation(responseWriter, requestReader, "ExecuteBatchTransfer", controller.Service.ExecuteBatchTransfer)
}

// ResumeBatchTransfer ... Re-drives the outstanding relations of a batch
func (controller *BatchTransferController) ResumeBatchTransfer(responseWriter http.ResponseWriter, requestReader *http.Request) {
	controller.runBatchOperation(responseWriter, requestReader, "ResumeBatchTransfer", controller.Service.ResumeBatchTransfer)
}

// RetryFailedTransfers ... Resets all failed relations of a batch and resumes it
func (controller *BatchTransferController) RetryFailedTransfers(responseWriter http.ResponseWriter, requestReader *http.Request) {
	controller.runBatchOperation(responseWriter, requestReader, "RetryFailedTransfers", controller.Service.RetryFailedTransfers)
}

// RetryTransferRelation ... Retries one failed relation
func (controller *BatchTransferController) RetryTransferRelation(responseWriter http.ResponseWriter, requestReader *http.Request) {

	apiResponse := utility.NewResponse()
	relationID, ok := parseIDParam(responseWriter, requestReader, "RetryTransferRelation", "relationId")
	if !ok {
		return
	}

	requestData := dto.ExecuteBatchTransferRequest{}
	json.NewDecoder(requestReader.Body).Decode(&requestData)

	responseData, err := controller.Service.RetryTransferRelation(relationID, requestData.Auto2FA)
	if err != nil {
		ReturnServiceError(responseWriter, "RetryTransferRelation", err)
		return
	}

	logger.Info("Outgoing response to RetryTransferRelation request %+v", responseData)
	responseWriter.Header().Set("Content-Type", "application/json")
	json.NewEncoder(responseWriter).Encode(apiResponse.Successful("SUCCESS", utility.SUCCESS, responseData))
}

// CloseBatchTransfer ... Manually closes an unfinished batch, failing its unresolved relations
func (controller *BatchTransferController) CloseBatchTransfer(responseWriter http.ResponseWriter, requestReader *http.Request) {

	apiResponse := utility.NewResponse()
	batchID, ok := parseIDParam(responseWriter, requestReader, "CloseBatchTransfer", "batchId")
	if !ok {
		return
	}

	requestData := dto.CloseBatchTransferRequest{}
	json.NewDecoder(requestReader.Body).Decode(&requestData)
	logger.Info("Incoming request details for CloseBatchTransfer : batch : %d, reason : %s", batchID, requestData.Reason)

	responseData, err := controller.Service.CloseBatchTransfer(batchID, requestData.Reason)
	if err != nil {
		ReturnServiceError(responseWriter, "CloseBatchTransfer", err)
		return
	}

	logger.Info("Outgoing response to CloseBatchTransfer request %+v", responseData)
	responseWriter.Header().Set("Content-Type", "application/json")
	json.NewEncoder(responseWriter).Encode(apiResponse.Successful("SUCCESS", utility.SUCCESS, responseData))
}

// GetBatchTransfer ... Retrieves a batch with its progress summary
func (controller *BatchTransferController) GetBatchTransfer(responseWriter http.ResponseWriter, requestReader *http.Request) {

	apiResponse := utility.NewResponse()
	batchID, ok := parseIDParam(responseWriter, requestReader, "GetBatchTransfer", "batchId")
	if !ok {
		return
	}

	responseData, err := controller.Service.GetBatchTransfer(batchID)
	if err != nil {
		ReturnServiceError(responseWriter, "GetBatchTransfer", err)
		return
	}

	responseWriter.Header().Set("Content-Type", "application/json")
	json.NewEncoder(responseWriter).Encode(apiResponse.Successful("SUCCESS", utility.SUCCESS, responseData))
}

// ListBatchTransfers ... Paginated batch listing
func (controller *BatchTransferController) ListBatchTransfers(responseWriter http.ResponseWriter, requestReader *http.Request) {

	apiResponse := utility.NewResponse()
	page, pageSize := parsePagination(requestReader)

	responseData, err := controller.Service.ListBatchTransfers(page, pageSize)
	if err != nil {
		ReturnServiceError(responseWriter, "ListBatchTransfers", err)
		return
	}

	responseWriter.Header().Set("Content-Type", "application/json")
	json.NewEncoder(responseWriter).Encode(apiResponse.Successful("SUCCESS", utility.SUCCESS, responseData))
}

// ListBatchTransferRelations ... Paginated relation listing with status and keyword filters
func (controller *BatchTransferController) ListBatchTransferRelations(responseWriter http.ResponseWriter, requestReader *http.Request) {

	apiResponse := utility.NewResponse()
	batchID, ok := parseIDParam(responseWriter, requestReader, "ListBatchTransferRelations", "batchId")
	if !ok {
		return
	}

	page, pageSize := parsePagination(requestReader)
	status := requestReader.URL.Query().Get("status")
	keyword := requestReader.URL.Query().Get("keyword")

	responseData, err := controller.Service.ListRelations(batchID, status, keyword, page, pageSize)
	if err != nil {
		ReturnServiceError(responseWriter, "ListBatchTransferRelations", err)
		return
	}

	responseWriter.Header().Set("Content-Type", "application/json")
	json.NewEncoder(responseWriter).Encode(apiResponse.Successful("SUCCESS", utility.SUCCESS, responseData))
}

// GetBatchTransferProgress ... Aggregate counts and completion percentage of a batch
func (controller *BatchTransferController) GetBatchTransferProgress(responseWriter http.ResponseWriter, requestReader *http.Request) {

	apiResponse := utility.NewResponse()
	batchID, ok := parseIDParam(responseWriter, requestReader, "GetBatchTransferProgress", "batchId")
	if !ok {
		return
	}

	responseData, err := controller.Service.GetProgress(batchID)
	if err != nil {
		ReturnServiceError(responseWriter, "GetBatchTransferProgress", err)
		return
	}

	responseWriter.Header().Set("Content-Type", "application/json")
	json.NewEncoder(responseWriter).Encode(apiResponse.Successful("SUCCESS", utility.SUCCESS, responseData))
}

// ListBatchTransferHistories ... Audit trail of a batch, most recent first
func (controller *BatchTransferController) ListBatchTransferHistories(responseWriter http.ResponseWriter, requestReader *http.Request) {

	apiResponse := utility.NewResponse()
	batchID, ok := parseIDParam(responseWriter, requestReader, "ListBatchTransferHistories", "batchId")
	if !ok {
		return
	}

	responseData, err := controller.Service.ListHistories(batchID)
	if err != nil {
		ReturnServiceError(responseWriter, "ListBatchTransferHistories", err)
		return
	}

	responseWriter.Header().Set("Content-Type", "application/json")
	json.NewEncoder(responseWriter).Encode(apiResponse.Successful("SUCCESS", utility.SUCCESS, responseData))
}

func (controller *BatchTransferController) runBatchOperation(responseWriter http.ResponseWriter, requestReader *http.Request, tag string, operation func(int64, bool) (dto.ExecuteBatchTransferResponse, error)) {

	apiResponse := utility.NewResponse()
	batchID, ok := parseIDParam(responseWriter, requestReader, tag, "batchId")
	if !ok {
		return
	}

	requestData := dto.ExecuteBatchTransferRequest{}
	json.NewDecoder(requestReader.Body).Decode(&requestData)
	logger.Info("Incoming request details for %s : batch : %d, auto2FA : %t", tag, batchID, requestData.Auto2FA)

	responseData, err := operation(batchID, requestData.Auto2FA)
	if err != nil {
		ReturnServiceError(responseWriter, tag, err)
		return
	}

	logger.Info("Outgoing response to %s request %+v", tag, responseData)
	responseWriter.Header().Set("Content-Type", "application/json")
	json.NewEncoder(responseWriter).Encode(apiResponse.Successful("SUCCESS", utility.SUCCESS, responseData))
}

func parseIDParam(responseWriter http.ResponseWriter, requestReader *http.Request, tag string, name string) (int64, bool) {
	apiResponse := utility.NewResponse()
	routeParams := mux.Vars(requestReader)
	id, err := strconv.ParseInt(routeParams[name], 10, 64)
	if err != nil || id <= 0 {
		ReturnError(responseWriter, tag, http.StatusBadRequest, err, apiResponse.PlainError("INPUT_ERR", utility.ID_CAST_ERR))
		return 0, false
	}
	return id, true
}

func parsePagination(requestReader *http.Request) (int, int) {
	page, _ := strconv.Atoi(requestReader.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(requestReader.URL.Query().Get("pageSize"))
	return page, pageSize
}
