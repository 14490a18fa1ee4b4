package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"infini-manager/database"
	"infini-manager/dto"
	"infini-manager/model"
	"infini-manager/utility"
	"infini-manager/utility/errorcode"
	"infini-manager/utility/logger"
)

// ExecuteBatchTransfer ... Runs one pass over the pending relations of a batch, sequentially and in
// ascending id order. A single relation failure never aborts the pass; every relation reaches a
// terminal state before the batch aggregate is recomputed.
func (service *BatchTransferService) ExecuteBatchTransfer(batchID int64, auto2FA bool) (dto.ExecuteBatchTransferResponse, error) {

	token, err := service.acquireBatchLock(batchID)
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}
	defer service.releaseBatchLock(batchID, token)

	batch, err := service.getBatch(batchID)
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}
	if batch.Status == model.BatchStatus.COMPLETED || batch.Status == model.BatchStatus.FAILED {
		return dto.ExecuteBatchTransferResponse{}, serviceError(http.StatusConflict, errorcode.STATE_CONFLICT_ERR,
			errors.New(fmt.Sprintf("Batch transfer %d already %s", batchID, batch.Status)))
	}

	if err := service.markBatchProcessing(&batch); err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}

	relations, err := service.Repository.FetchPendingRelations(batchID)
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}

	return service.runPass(batch, relations, auto2FA, "Execution")
}

// ResumeBatchTransfer ... Re-drives a batch : picks up pending relations plus relations stuck in
// processing past the staleness threshold. When nothing is outstanding the batch is settled to the
// aggregator's terminal state, which makes repeated resume calls idempotent.
func (service *BatchTransferService) ResumeBatchTransfer(batchID int64, auto2FA bool) (dto.ExecuteBatchTransferResponse, error) {

	token, err := service.acquireBatchLock(batchID)
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}
	defer service.releaseBatchLock(batchID, token)

	return service.resumeBatchTransfer(batchID, auto2FA)
}

func (service *BatchTransferService) resumeBatchTransfer(batchID int64, auto2FA bool) (dto.ExecuteBatchTransferResponse, error) {

	batch, err := service.getBatch(batchID)
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}

	relations, err := service.Repository.FetchResumableRelations(batchID, service.staleProcessingCutoff())
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}

	if len(relations) == 0 {
		response, err := service.finalizeBatch(batch, 0, 0, "Resume found no outstanding relations")
		if err != nil {
			return dto.ExecuteBatchTransferResponse{}, err
		}
		return response, nil
	}

	if err := service.markBatchProcessing(&batch); err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}
	return service.runPass(batch, relations, auto2FA, "Resume")
}

// RetryFailedTransfers ... Bulk-resets every failed relation of a batch back to pending, then resumes it.
func (service *BatchTransferService) RetryFailedTransfers(batchID int64, auto2FA bool) (dto.ExecuteBatchTransferResponse, error) {

	token, err := service.acquireBatchLock(batchID)
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}
	defer service.releaseBatchLock(batchID, token)

	batch, err := service.getBatch(batchID)
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}

	counts, err := service.Repository.CountRelationStatuses(batchID)
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}
	if counts.Failed == 0 {
		return dto.ExecuteBatchTransferResponse{}, serviceError(http.StatusConflict, errorcode.STATE_CONFLICT_ERR,
			errors.New(fmt.Sprintf("Batch transfer %d has no failed relations to retry", batchID)))
	}

	history := model.BatchTransferHistory{
		BatchID: batchID,
		Status:  model.BatchStatus.PROCESSING,
		Message: fmt.Sprintf("Retrying %d failed transfer relations", counts.Failed),
	}
	tx := database.NewTx(service.Repository.Db()).
		BulkUpdateWhere(&model.BatchTransferRelation{}, "batch_id = ? AND status = ?",
			[]interface{}{batchID, model.RelationStatus.FAILED},
			map[string]interface{}{"status": model.RelationStatus.PENDING, "error_message": ""}).
		UpdateFields(&batch, map[string]interface{}{"status": model.BatchStatus.PROCESSING, "completed_at": nil}).
		Create(&history)
	if err := tx.Commit(); err != nil {
		logger.Error("RetryFailedTransfers logs : Error resetting failed relations for batch %d > %s", batchID, err)
		return dto.ExecuteBatchTransferResponse{}, err
	}

	return service.resumeBatchTransfer(batchID, auto2FA)
}

// RetryTransferRelation ... Resets a single failed relation and reprocesses exactly that relation.
func (service *BatchTransferService) RetryTransferRelation(relationID int64, auto2FA bool) (dto.ExecuteBatchTransferResponse, error) {

	relation := model.BatchTransferRelation{}
	if err := service.Repository.Get(relationID, &relation); err != nil {
		if err.Error() == errorcode.SQL_404 {
			return dto.ExecuteBatchTransferResponse{}, serviceError(http.StatusNotFound, errorcode.RECORD_NOT_FOUND,
				errors.New(fmt.Sprintf("%s : %d", errorcode.RELATION_NOT_FOUND_ERR, relationID)))
		}
		return dto.ExecuteBatchTransferResponse{}, err
	}

	token, err := service.acquireBatchLock(relation.BatchID)
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}
	defer service.releaseBatchLock(relation.BatchID, token)

	if relation.Status != model.RelationStatus.FAILED {
		return dto.ExecuteBatchTransferResponse{}, serviceError(http.StatusConflict, errorcode.STATE_CONFLICT_ERR,
			errors.New(fmt.Sprintf("Transfer relation %d is %s, only failed relations can be retried", relationID, relation.Status)))
	}

	batch, err := service.getBatch(relation.BatchID)
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}

	if err := service.Repository.UpdateFields(&relation, map[string]interface{}{
		"status": model.RelationStatus.PENDING, "error_message": ""}); err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}
	relationRef := relation.ID
	if err := service.Repository.Create(&model.BatchTransferHistory{
		BatchID:    batch.ID,
		RelationID: &relationRef,
		Status:     model.BatchStatus.PROCESSING,
		Message:    fmt.Sprintf("Retrying transfer relation %d", relationID),
	}); err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}
	if err := service.markBatchProcessing(&batch); err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}

	relation.Status = model.RelationStatus.PENDING
	relation.ErrorMessage = ""
	success, err := service.processRelation(batch, relation, auto2FA)
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}

	passSuccess, passFailed := 0, 1
	if success {
		passSuccess, passFailed = 1, 0
	}
	return service.finalizeBatch(batch, passSuccess, passFailed,
		fmt.Sprintf("Retry of transfer relation %d finished", relationID))
}

// CloseBatchTransfer ... Manually closes an unfinished batch : every pending or processing relation is
// force-failed with the closure reason, atomically with the batch state change.
func (service *BatchTransferService) CloseBatchTransfer(batchID int64, reason string) (dto.CloseBatchTransferResponse, error) {

	token, err := service.acquireBatchLock(batchID)
	if err != nil {
		return dto.CloseBatchTransferResponse{}, err
	}
	defer service.releaseBatchLock(batchID, token)

	batch, err := service.getBatch(batchID)
	if err != nil {
		return dto.CloseBatchTransferResponse{}, err
	}
	if batch.Status != model.BatchStatus.PENDING && batch.Status != model.BatchStatus.PROCESSING {
		return dto.CloseBatchTransferResponse{}, serviceError(http.StatusConflict, errorcode.STATE_CONFLICT_ERR,
			errors.New(fmt.Sprintf("Batch transfer %d already %s", batchID, batch.Status)))
	}

	if reason == "" {
		reason = utility.DEFAULT_CLOSE_REASON
	}

	counts, err := service.Repository.CountRelationStatuses(batchID)
	if err != nil {
		return dto.CloseBatchTransferResponse{}, err
	}
	closedCount := counts.Unresolved()
	failedCount := counts.Failed + closedCount

	details, _ := json.Marshal(map[string]interface{}{"closedRelations": closedCount, "reason": reason})
	now := time.Now()
	history := model.BatchTransferHistory{
		BatchID: batchID,
		Status:  model.BatchStatus.FAILED,
		Message: fmt.Sprintf("Batch transfer manually closed : %d unresolved relations failed", closedCount),
		Details: string(details),
	}

	tx := database.NewTx(service.Repository.Db()).
		BulkUpdateWhere(&model.BatchTransferRelation{}, "batch_id = ? AND status IN (?)",
			[]interface{}{batchID, []string{model.RelationStatus.PENDING, model.RelationStatus.PROCESSING}},
			map[string]interface{}{"status": model.RelationStatus.FAILED, "error_message": reason}).
		UpdateFields(&batch, map[string]interface{}{
			"status":        model.BatchStatus.FAILED,
			"success_count": counts.Completed,
			"failed_count":  failedCount,
			"completed_at":  now,
		}).
		Create(&history)
	if err := tx.Commit(); err != nil {
		logger.Error("CloseBatchTransfer logs : Error closing batch %d > %s", batchID, err)
		return dto.CloseBatchTransferResponse{}, err
	}

	logger.Info("CloseBatchTransfer logs : Batch %d closed, %d relations failed with reason : %s", batchID, closedCount, reason)

	return dto.CloseBatchTransferResponse{
		BatchID:              batchID,
		ClosedRelationsCount: closedCount,
		CompletedCount:       counts.Completed,
		FailedCount:          failedCount,
	}, nil
}

// runPass ... Processes the given relations sequentially, then recomputes the batch aggregate.
// Executor failures are captured per relation; a persistence failure aborts the pass and leaves
// already committed relation updates in place.
func (service *BatchTransferService) runPass(batch model.BatchTransfer, relations []model.BatchTransferRelation, auto2FA bool, passName string) (dto.ExecuteBatchTransferResponse, error) {

	if len(relations) == 0 {
		return service.finalizeBatch(batch, 0, 0, utility.NO_PENDING_RELATIONS)
	}

	passSuccess, passFailed := 0, 0
	for _, relation := range relations {
		success, err := service.processRelation(batch, relation, auto2FA)
		if err != nil {
			logger.Error("%s pass logs : persistence failure on relation %d of batch %d, aborting pass > %s", passName, relation.ID, batch.ID, err)
			return dto.ExecuteBatchTransferResponse{}, err
		}
		if success {
			passSuccess++
		} else {
			passFailed++
		}
	}

	return service.finalizeBatch(batch, passSuccess, passFailed, fmt.Sprintf("%s pass finished", passName))
}

// processRelation ... Drives one relation to a terminal state. The executor result and a thrown
// executor error are treated identically : the relation fails with the captured message.
func (service *BatchTransferService) processRelation(batch model.BatchTransfer, relation model.BatchTransferRelation, auto2FA bool) (bool, error) {

	if err := service.Repository.UpdateFields(&relation, map[string]interface{}{
		"status": model.RelationStatus.PROCESSING}); err != nil {
		return false, err
	}

	contactType, targetIdentifier := deriveTransferTarget(relation)
	request := dto.TransferRequest{
		SourceAccountID:  relation.SourceAccountID,
		ContactType:      contactType,
		TargetIdentifier: targetIdentifier,
		Amount:           relation.Amount,
		Source:           utility.BATCH_SOURCE_TAG,
		Force:            false,
		Remarks:          batch.Remarks,
		Auto2FA:          auto2FA,
	}

	response, err := service.Executor.Transfer(request)
	if err != nil {
		logger.Error("processRelation logs : Transfer executor error for relation %d of batch %d > %s", relation.ID, batch.ID, err)
		return false, service.Repository.UpdateFields(&relation, map[string]interface{}{
			"status": model.RelationStatus.FAILED, "error_message": err.Error()})
	}
	if !response.Success {
		message := response.Message
		if message == "" {
			message = "Transfer rejected by the transfer platform"
		}
		return false, service.Repository.UpdateFields(&relation, map[string]interface{}{
			"status": model.RelationStatus.FAILED, "error_message": message})
	}

	return true, service.Repository.UpdateFields(&relation, map[string]interface{}{
		"status": model.RelationStatus.COMPLETED, "transfer_id": response.TransferID, "error_message": ""})
}

// finalizeBatch ... Recomputes the batch aggregate from the current relation status distribution and
// appends one history entry for the pass. Counts are always recomputed, never carried additively.
func (service *BatchTransferService) finalizeBatch(batch model.BatchTransfer, passSuccess int, passFailed int, message string) (dto.ExecuteBatchTransferResponse, error) {

	counts, err := service.Repository.CountRelationStatuses(batch.ID)
	if err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}

	finalStatus := computeFinalStatus(counts)
	update := map[string]interface{}{
		"status":        finalStatus,
		"success_count": counts.Completed,
		"failed_count":  counts.Failed,
	}
	if finalStatus == model.BatchStatus.COMPLETED || finalStatus == model.BatchStatus.FAILED {
		update["completed_at"] = time.Now()
	} else {
		update["completed_at"] = nil
	}
	if err := service.Repository.UpdateFields(&batch, update); err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}

	details, _ := json.Marshal(map[string]interface{}{
		"passSuccess": passSuccess,
		"passFailed":  passFailed,
		"completed":   counts.Completed,
		"failed":      counts.Failed,
		"total":       counts.Total,
	})
	if err := service.Repository.Create(&model.BatchTransferHistory{
		BatchID: batch.ID,
		Status:  finalStatus,
		Message: fmt.Sprintf("%s : %d succeeded, %d failed in this pass; %d/%d relations completed, %d failed overall", message, passSuccess, passFailed, counts.Completed, counts.Total, counts.Failed),
		Details: string(details),
	}); err != nil {
		return dto.ExecuteBatchTransferResponse{}, err
	}

	logger.Info("finalizeBatch logs : Batch %d finalized as %s, %d completed / %d failed of %d", batch.ID, finalStatus, counts.Completed, counts.Failed, counts.Total)

	return dto.ExecuteBatchTransferResponse{
		BatchID:      batch.ID,
		SuccessCount: counts.Completed,
		FailedCount:  counts.Failed,
		Status:       finalStatus,
	}, nil
}

// computeFinalStatus ... Terminal state rule : any unresolved relation keeps the batch processing,
// a batch fails only when every relation failed, any other mix is completed.
func computeFinalStatus(counts database.RelationStatusCount) string {
	if counts.Unresolved() > 0 {
		return model.BatchStatus.PROCESSING
	}
	if counts.Total > 0 && counts.Failed == counts.Total {
		return model.BatchStatus.FAILED
	}
	return model.BatchStatus.COMPLETED
}

// deriveTransferTarget ... Resolution rule for the non-fixed side of a transfer : a relation without
// a target identifier falls back to its matched internal account, addressed as an inner transfer.
func deriveTransferTarget(relation model.BatchTransferRelation) (string, string) {
	if relation.TargetIdentifier == "" && relation.MatchedAccountID != nil {
		return model.ContactType.INNER, strconv.FormatInt(*relation.MatchedAccountID, 10)
	}
	return relation.ContactType, relation.TargetIdentifier
}

func (service *BatchTransferService) markBatchProcessing(batch *model.BatchTransfer) error {
	if err := service.Repository.UpdateFields(batch, map[string]interface{}{
		"status": model.BatchStatus.PROCESSING, "completed_at": nil}); err != nil {
		return err
	}
	batch.Status = model.BatchStatus.PROCESSING
	batch.CompletedAt = nil
	return nil
}

func (service *BatchTransferService) staleProcessingCutoff() time.Time {
	waitTime := service.Config.StuckRelationWaitTime
	if waitTime <= 0 {
		waitTime = utility.MIN_WAIT_TIME_IN_PROCESSING
	}
	return time.Now().Add(-time.Duration(waitTime) * time.Second)
}

func (service *BatchTransferService) acquireBatchLock(batchID int64) (string, error) {
	ttl := service.Config.BatchLockTTL
	if ttl <= 0 {
		ttl = utility.BATCH_LOCK_TTL_MS
	}
	identifier := fmt.Sprintf("%s%d", utility.BATCH_LOCK_PREFIX, batchID)
	token, err := service.Locker.AcquireLock(identifier, time.Duration(ttl)*time.Millisecond)
	if err != nil {
		logger.Error("Error occured while obtaining lock for batch %d : %s", batchID, err)
		return "", serviceError(http.StatusConflict, errorcode.LOCK_ERR_CODE,
			errors.New(fmt.Sprintf("Another operation is running on batch transfer %d", batchID)))
	}
	return token, nil
}

func (service *BatchTransferService) releaseBatchLock(batchID int64, token string) {
	identifier := fmt.Sprintf("%s%d", utility.BATCH_LOCK_PREFIX, batchID)
	if err := service.Locker.ReleaseLock(identifier, token); err != nil {
		logger.Error("Error occured while releasing lock for batch %d : %s", batchID, err)
	}
}
