package services

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"infini-manager/config"
	"infini-manager/database"
	"infini-manager/dto"
	"infini-manager/model"
	"infini-manager/utility"
	"infini-manager/utility/appError"
	"infini-manager/utility/errorcode"
	"infini-manager/utility/logger"

	"github.com/shopspring/decimal"
)

// BatchTransferService object
type BatchTransferService struct {
	Config     config.Data
	Repository database.IBatchTransferRepository
	Executor   TransferExecutor
	Locker     ILocker
}

func NewBatchTransferService(config config.Data, repository database.IBatchTransferRepository, executor TransferExecutor, locker ILocker) *BatchTransferService {
	baseService := BatchTransferService{
		Config:     config,
		Repository: repository,
		Executor:   executor,
		Locker:     locker,
	}
	return &baseService
}

// CreateBatchTransfer ... Validates the creation request and persists the batch, its relations
// and the creation history entry in a single transaction. Nothing is persisted on rejection.
func (service *BatchTransferService) CreateBatchTransfer(request dto.CreateBatchTransferRequest) (dto.CreateBatchTransferResponse, error) {

	if err := service.validateCreationRequest(request); err != nil {
		return dto.CreateBatchTransferResponse{}, err
	}

	totalAmount := decimal.Zero
	for _, relation := range request.Relations {
		amount, err := decimal.NewFromString(relation.Amount)
		if err != nil {
			return dto.CreateBatchTransferResponse{}, serviceError(http.StatusBadRequest, errorcode.INPUT_ERR_CODE,
				errors.New(fmt.Sprintf("%s : %s", errorcode.INVALID_AMOUNT_ERR, relation.Amount)))
		}
		totalAmount = totalAmount.Add(amount)
	}

	batch := model.BatchTransfer{
		BatchNumber: utility.GenerateBatchNumber(),
		Name:        request.Name,
		Type:        request.Type,
		Status:      model.BatchStatus.PENDING,
		TotalAmount: totalAmount.String(),
		Remarks:     request.Remarks,
		CreatedBy:   request.CreatedBy,
	}

	relations := make([]model.BatchTransferRelation, 0, len(request.Relations))
	for _, relationRequest := range request.Relations {
		relations = append(relations, service.buildRelation(request, relationRequest))
	}

	history := model.BatchTransferHistory{
		Status:  model.BatchStatus.PENDING,
		Message: fmt.Sprintf("Batch transfer created : type %s, total amount %s, %d relations", batch.Type, batch.TotalAmount, len(relations)),
	}

	if err := service.Repository.CreateBatchWithRelations(&batch, relations, &history); err != nil {
		logger.Error("CreateBatchTransfer logs : Error persisting batch transfer > %s", err)
		return dto.CreateBatchTransferResponse{}, err
	}

	logger.Info("CreateBatchTransfer logs : Batch transfer %s created with id %d and %d relations", batch.BatchNumber, batch.ID, len(relations))

	return dto.CreateBatchTransferResponse{
		BatchID:        batch.ID,
		BatchNumber:    batch.BatchNumber,
		TotalAmount:    batch.TotalAmount,
		RelationsCount: len(relations),
	}, nil
}

// validateCreationRequest ... Rejects duplicate targets or sources before anything is persisted
func (service *BatchTransferService) validateCreationRequest(request dto.CreateBatchTransferRequest) error {

	switch request.Type {
	case model.BatchType.ONE_TO_MANY:
		if request.SourceAccountID <= 0 {
			return serviceError(http.StatusBadRequest, errorcode.INPUT_ERR_CODE, errors.New("sourceAccountId is required for a one_to_many batch"))
		}
		if duplicates := duplicateValues(request.Relations, resolvedTargetIdentifier); len(duplicates) > 0 {
			return serviceErrorWithData(http.StatusBadRequest, errorcode.INPUT_ERR_CODE, errors.New(errorcode.DUPLICATE_TARGET_ERR), duplicates)
		}
	case model.BatchType.MANY_TO_ONE:
		if request.TargetAccountID <= 0 {
			return serviceError(http.StatusBadRequest, errorcode.INPUT_ERR_CODE, errors.New("targetAccountId is required for a many_to_one batch"))
		}
		for _, relation := range request.Relations {
			if relation.AccountID <= 0 {
				return serviceError(http.StatusBadRequest, errorcode.INPUT_ERR_CODE, errors.New("every relation of a many_to_one batch requires a source accountId"))
			}
		}
		if duplicates := duplicateValues(request.Relations, sourceAccountIdentifier); len(duplicates) > 0 {
			return serviceErrorWithData(http.StatusBadRequest, errorcode.INPUT_ERR_CODE, errors.New(errorcode.DUPLICATE_SOURCE_ERR), duplicates)
		}
	default:
		return serviceError(http.StatusBadRequest, errorcode.INPUT_ERR_CODE, errors.New(fmt.Sprintf("Unsupported batch transfer type : %s", request.Type)))
	}

	return nil
}

// buildRelation ... Maps one requested transfer onto a relation row for the batch topology
func (service *BatchTransferService) buildRelation(request dto.CreateBatchTransferRequest, relationRequest dto.BatchRelationRequest) model.BatchTransferRelation {

	relation := model.BatchTransferRelation{
		ContactType:      relationRequest.ContactType,
		TargetIdentifier: relationRequest.TargetIdentifier,
		Amount:           relationRequest.Amount,
		Status:           model.RelationStatus.PENDING,
	}

	if request.Type == model.BatchType.ONE_TO_MANY {
		relation.SourceAccountID = request.SourceAccountID
		if relationRequest.AccountID > 0 {
			matched := relationRequest.AccountID
			relation.MatchedAccountID = &matched
		}
	} else {
		relation.SourceAccountID = relationRequest.AccountID
		matched := request.TargetAccountID
		relation.MatchedAccountID = &matched
	}

	return relation
}

// GetBatchTransfer ... Batch detail with its aggregate progress
func (service *BatchTransferService) GetBatchTransfer(batchID int64) (dto.BatchTransferDetail, error) {
	batch, err := service.getBatch(batchID)
	if err != nil {
		return dto.BatchTransferDetail{}, err
	}
	progress, err := service.GetProgress(batchID)
	if err != nil {
		return dto.BatchTransferDetail{}, err
	}
	return dto.BatchTransferDetail{Batch: batch, Progress: progress}, nil
}

// GetProgress ... Relation status counts plus resolution percentage
func (service *BatchTransferService) GetProgress(batchID int64) (dto.BatchTransferProgress, error) {
	batch, err := service.getBatch(batchID)
	if err != nil {
		return dto.BatchTransferProgress{}, err
	}
	counts, err := service.Repository.CountRelationStatuses(batchID)
	if err != nil {
		return dto.BatchTransferProgress{}, err
	}

	percent := "0.00"
	if counts.Total > 0 {
		resolved := decimal.NewFromInt(int64(counts.Completed + counts.Failed))
		percent = resolved.Div(decimal.NewFromInt(int64(counts.Total))).Mul(decimal.NewFromInt(100)).StringFixed(2)
	}

	return dto.BatchTransferProgress{
		BatchID:         batch.ID,
		Status:          batch.Status,
		Total:           counts.Total,
		Pending:         counts.Pending,
		Processing:      counts.Processing,
		Completed:       counts.Completed,
		Failed:          counts.Failed,
		ProgressPercent: percent,
	}, nil
}

// ListRelations ... Paginated relation listing, filterable by status and target identifier keyword
func (service *BatchTransferService) ListRelations(batchID int64, status string, keyword string, page int, pageSize int) (dto.RelationListResponse, error) {
	if _, err := service.getBatch(batchID); err != nil {
		return dto.RelationListResponse{}, err
	}
	page, pageSize = utility.NormalizePagination(page, pageSize)
	relations, total, err := service.Repository.FetchRelationsPaginated(batchID, status, keyword, page, pageSize)
	if err != nil {
		return dto.RelationListResponse{}, err
	}
	return dto.RelationListResponse{Relations: relations, Page: page, PageSize: pageSize, Total: total}, nil
}

// ListBatchTransfers ... Paginated batch listing in reverse creation order
func (service *BatchTransferService) ListBatchTransfers(page int, pageSize int) (dto.BatchTransferListResponse, error) {
	page, pageSize = utility.NormalizePagination(page, pageSize)
	batches, total, err := service.Repository.FetchBatchesPaginated(page, pageSize)
	if err != nil {
		return dto.BatchTransferListResponse{}, err
	}
	return dto.BatchTransferListResponse{Batches: batches, Page: page, PageSize: pageSize, Total: total}, nil
}

// ListHistories ... Audit trail of a batch
func (service *BatchTransferService) ListHistories(batchID int64) ([]model.BatchTransferHistory, error) {
	if _, err := service.getBatch(batchID); err != nil {
		return nil, err
	}
	return service.Repository.FetchHistories(batchID)
}

func (service *BatchTransferService) getBatch(batchID int64) (model.BatchTransfer, error) {
	batch := model.BatchTransfer{}
	if err := service.Repository.Get(batchID, &batch); err != nil {
		appErr := err.(appError.Err)
		if appErr.ErrType == errorcode.RECORD_NOT_FOUND {
			return model.BatchTransfer{}, serviceError(http.StatusNotFound, errorcode.RECORD_NOT_FOUND,
				errors.New(fmt.Sprintf("%s : %d", errorcode.BATCH_NOT_FOUND_ERR, batchID)))
		}
		return model.BatchTransfer{}, err
	}
	return batch, nil
}

func resolvedTargetIdentifier(relation dto.BatchRelationRequest) string {
	if relation.TargetIdentifier != "" {
		return relation.TargetIdentifier
	}
	if relation.AccountID > 0 {
		return strconv.FormatInt(relation.AccountID, 10)
	}
	return ""
}

func sourceAccountIdentifier(relation dto.BatchRelationRequest) string {
	return strconv.FormatInt(relation.AccountID, 10)
}

// duplicateValues ... Returns the set of values appearing more than once
func duplicateValues(relations []dto.BatchRelationRequest, resolve func(dto.BatchRelationRequest) string) []string {
	seen := map[string]int{}
	for _, relation := range relations {
		seen[resolve(relation)]++
	}
	duplicates := []string{}
	for value, occurrences := range seen {
		if value != "" && occurrences > 1 {
			duplicates = append(duplicates, value)
		}
	}
	return duplicates
}

func serviceError(status int, errType string, err error) error {
	return appError.Err{
		ErrCode: status,
		ErrType: errType,
		Err:     err,
	}
}

func serviceErrorWithData(status int, errType string, err error, data interface{}) error {
	return appError.Err{
		ErrCode: status,
		ErrType: errType,
		Err:     err,
		ErrData: data,
	}
}
