package services

import (
	"fmt"
	"net/http"
	"time"

	"infini-manager/dto"
	"infini-manager/model"
	"infini-manager/utility"
	"infini-manager/utility/appError"
	"infini-manager/utility/errorcode"
)

func (s *Suite) Test_ExecuteBatchTransfer_MixedOutcomes() {
	batch := s.seedBatch(model.BatchStatus.PENDING, []model.BatchTransferRelation{
		pendingRelation("a", "1"),
		pendingRelation("b", "1"),
		pendingRelation("c", "1"),
		pendingRelation("d", "1"),
		pendingRelation("e", "1"),
	})
	s.Executor.failTargets["b"] = "insufficient balance"
	s.Executor.failTargets["d"] = "target account frozen"

	response, err := s.Service.ExecuteBatchTransfer(batch.ID, false)
	s.Require().NoError(err)
	s.Equal(3, response.SuccessCount)
	s.Equal(2, response.FailedCount)
	s.Equal(model.BatchStatus.COMPLETED, response.Status)

	reloaded := s.reloadBatch(batch.ID)
	s.Equal(model.BatchStatus.COMPLETED, reloaded.Status)
	s.Equal(3, reloaded.SuccessCount)
	s.Equal(2, reloaded.FailedCount)
	s.Require().NotNil(reloaded.CompletedAt)

	relations := s.reloadRelations(batch.ID)
	s.Equal(model.RelationStatus.COMPLETED, relations[0].Status)
	s.NotEmpty(relations[0].TransferID)
	s.Equal(model.RelationStatus.FAILED, relations[1].Status)
	s.Equal("insufficient balance", relations[1].ErrorMessage)
	s.Equal(model.RelationStatus.FAILED, relations[3].Status)
	s.Equal("target account frozen", relations[3].ErrorMessage)

	s.Len(s.Executor.calls, 5)
	s.Equal(utility.BATCH_SOURCE_TAG, s.Executor.calls[0].Source)
}

func (s *Suite) Test_ExecuteBatchTransfer_AllFailedBatchFails() {
	batch := s.seedBatch(model.BatchStatus.PENDING, []model.BatchTransferRelation{
		pendingRelation("a", "1"),
		pendingRelation("b", "1"),
	})
	s.Executor.failTargets["a"] = "rejected"
	s.Executor.failTargets["b"] = "rejected"

	response, err := s.Service.ExecuteBatchTransfer(batch.ID, false)
	s.Require().NoError(err)
	s.Equal(model.BatchStatus.FAILED, response.Status)
	s.Equal(0, response.SuccessCount)
	s.Equal(2, response.FailedCount)

	reloaded := s.reloadBatch(batch.ID)
	s.Equal(model.BatchStatus.FAILED, reloaded.Status)
	s.NotNil(reloaded.CompletedAt)
}

func (s *Suite) Test_ExecuteBatchTransfer_ExecutorErrorFailsRelationNotPass() {
	batch := s.seedBatch(model.BatchStatus.PENDING, []model.BatchTransferRelation{
		pendingRelation("a", "1"),
		pendingRelation("b", "1"),
	})
	s.Executor.err = errTransferDown

	response, err := s.Service.ExecuteBatchTransfer(batch.ID, false)
	s.Require().NoError(err)
	s.Equal(model.BatchStatus.FAILED, response.Status)

	relations := s.reloadRelations(batch.ID)
	for _, relation := range relations {
		s.Equal(model.RelationStatus.FAILED, relation.Status)
		s.Equal(errTransferDown.Error(), relation.ErrorMessage)
	}
}

func (s *Suite) Test_ExecuteBatchTransfer_TerminalBatchRejected() {
	batch := s.seedBatch(model.BatchStatus.COMPLETED, nil)

	_, err := s.Service.ExecuteBatchTransfer(batch.ID, false)
	s.Require().Error(err)
	appErr := err.(appError.Err)
	s.Equal(http.StatusConflict, appErr.ErrCode)
	s.Equal(errorcode.STATE_CONFLICT_ERR, appErr.ErrType)
}

func (s *Suite) Test_ExecuteBatchTransfer_LockContention() {
	batch := s.seedBatch(model.BatchStatus.PENDING, []model.BatchTransferRelation{pendingRelation("a", "1")})

	identifier := fmt.Sprintf("%s%d", utility.BATCH_LOCK_PREFIX, batch.ID)
	_, err := s.Locker.AcquireLock(identifier, time.Minute)
	s.Require().NoError(err)

	_, err = s.Service.ExecuteBatchTransfer(batch.ID, false)
	s.Require().Error(err)
	appErr := err.(appError.Err)
	s.Equal(http.StatusConflict, appErr.ErrCode)
	s.Equal(errorcode.LOCK_ERR_CODE, appErr.ErrType)

	relations := s.reloadRelations(batch.ID)
	s.Equal(model.RelationStatus.PENDING, relations[0].Status)
}

func (s *Suite) Test_ResumeBatchTransfer_PicksUpPendingAndStaleProcessing() {
	batch := s.seedBatch(model.BatchStatus.PROCESSING, []model.BatchTransferRelation{
		relationWithStatus("done", "1", model.RelationStatus.COMPLETED),
		relationWithStatus("stuck", "1", model.RelationStatus.PROCESSING),
		relationWithStatus("fresh", "1", model.RelationStatus.PROCESSING),
		pendingRelation("waiting", "1"),
	})
	relations := s.reloadRelations(batch.ID)
	s.backdate(&relations[1], 10*time.Minute)

	response, err := s.Service.ResumeBatchTransfer(batch.ID, false)
	s.Require().NoError(err)

	// fresh stays processing, so the batch cannot settle yet
	s.Equal(model.BatchStatus.PROCESSING, response.Status)
	s.Equal(3, response.SuccessCount)

	reloaded := s.reloadRelations(batch.ID)
	s.Equal(model.RelationStatus.COMPLETED, reloaded[1].Status)
	s.Equal(model.RelationStatus.PROCESSING, reloaded[2].Status)
	s.Equal(model.RelationStatus.COMPLETED, reloaded[3].Status)

	targets := []string{}
	for _, call := range s.Executor.calls {
		targets = append(targets, call.TargetIdentifier)
	}
	s.Equal([]string{"stuck", "waiting"}, targets)
}

func (s *Suite) Test_ResumeBatchTransfer_NoOutstandingSettlesBatch() {
	batch := s.seedBatch(model.BatchStatus.PROCESSING, []model.BatchTransferRelation{
		relationWithStatus("a", "1", model.RelationStatus.COMPLETED),
		relationWithStatus("b", "1", model.RelationStatus.FAILED),
	})

	response, err := s.Service.ResumeBatchTransfer(batch.ID, false)
	s.Require().NoError(err)
	s.Equal(model.BatchStatus.COMPLETED, response.Status)
	s.Equal(1, response.SuccessCount)
	s.Equal(1, response.FailedCount)
	s.Empty(s.Executor.calls)

	// settling is idempotent, a second resume reports the same aggregate
	again, err := s.Service.ResumeBatchTransfer(batch.ID, false)
	s.Require().NoError(err)
	s.Equal(response, again)

	reloaded := s.reloadBatch(batch.ID)
	s.Equal(model.BatchStatus.COMPLETED, reloaded.Status)
	s.Equal(1, reloaded.SuccessCount)
	s.Equal(1, reloaded.FailedCount)
	s.NotNil(reloaded.CompletedAt)
}

func (s *Suite) Test_RetryFailedTransfers_OnlyFailedRelationsRerun() {
	batch := s.seedBatch(model.BatchStatus.COMPLETED, []model.BatchTransferRelation{
		relationWithStatus("a", "1", model.RelationStatus.COMPLETED),
		relationWithStatus("b", "1", model.RelationStatus.FAILED),
		relationWithStatus("c", "1", model.RelationStatus.FAILED),
	})
	relations := s.reloadRelations(batch.ID)
	s.DB.Model(&relations[1]).Update("error_message", "first attempt failed")

	response, err := s.Service.RetryFailedTransfers(batch.ID, false)
	s.Require().NoError(err)
	s.Equal(model.BatchStatus.COMPLETED, response.Status)
	s.Equal(3, response.SuccessCount)
	s.Equal(0, response.FailedCount)

	targets := []string{}
	for _, call := range s.Executor.calls {
		targets = append(targets, call.TargetIdentifier)
	}
	s.Equal([]string{"b", "c"}, targets)

	reloaded := s.reloadRelations(batch.ID)
	for _, relation := range reloaded {
		s.Equal(model.RelationStatus.COMPLETED, relation.Status)
		s.Empty(relation.ErrorMessage)
	}
}

func (s *Suite) Test_RetryFailedTransfers_NothingToRetry() {
	batch := s.seedBatch(model.BatchStatus.COMPLETED, []model.BatchTransferRelation{
		relationWithStatus("a", "1", model.RelationStatus.COMPLETED),
	})

	_, err := s.Service.RetryFailedTransfers(batch.ID, false)
	s.Require().Error(err)
	appErr := err.(appError.Err)
	s.Equal(http.StatusConflict, appErr.ErrCode)
	s.Equal(errorcode.STATE_CONFLICT_ERR, appErr.ErrType)
}

func (s *Suite) Test_RetryTransferRelation_SingleFailedRelation() {
	batch := s.seedBatch(model.BatchStatus.COMPLETED, []model.BatchTransferRelation{
		relationWithStatus("a", "1", model.RelationStatus.COMPLETED),
		relationWithStatus("b", "1", model.RelationStatus.FAILED),
	})
	relations := s.reloadRelations(batch.ID)

	response, err := s.Service.RetryTransferRelation(relations[1].ID, false)
	s.Require().NoError(err)
	s.Equal(model.BatchStatus.COMPLETED, response.Status)
	s.Equal(2, response.SuccessCount)
	s.Equal(0, response.FailedCount)

	reloaded := s.reloadRelations(batch.ID)
	s.Equal(model.RelationStatus.COMPLETED, reloaded[1].Status)
	s.NotEmpty(reloaded[1].TransferID)

	s.Require().Len(s.Executor.calls, 1)
	s.Equal("b", s.Executor.calls[0].TargetIdentifier)
}

func (s *Suite) Test_RetryTransferRelation_NonFailedRejected() {
	batch := s.seedBatch(model.BatchStatus.PROCESSING, []model.BatchTransferRelation{
		relationWithStatus("a", "1", model.RelationStatus.COMPLETED),
	})
	relations := s.reloadRelations(batch.ID)

	_, err := s.Service.RetryTransferRelation(relations[0].ID, false)
	s.Require().Error(err)
	s.Equal(http.StatusConflict, err.(appError.Err).ErrCode)
}

func (s *Suite) Test_RetryTransferRelation_UnknownRelation() {
	_, err := s.Service.RetryTransferRelation(424242, false)
	s.Require().Error(err)
	appErr := err.(appError.Err)
	s.Equal(http.StatusNotFound, appErr.ErrCode)
	s.Equal(errorcode.RECORD_NOT_FOUND, appErr.ErrType)
}

func (s *Suite) Test_CloseBatchTransfer_FailsUnresolvedRelations() {
	batch := s.seedBatch(model.BatchStatus.PROCESSING, []model.BatchTransferRelation{
		relationWithStatus("a", "1", model.RelationStatus.COMPLETED),
		relationWithStatus("b", "1", model.RelationStatus.COMPLETED),
		pendingRelation("c", "1"),
		pendingRelation("d", "1"),
		relationWithStatus("e", "1", model.RelationStatus.PROCESSING),
	})

	response, err := s.Service.CloseBatchTransfer(batch.ID, "source account emptied")
	s.Require().NoError(err)
	s.Equal(3, response.ClosedRelationsCount)
	s.Equal(2, response.CompletedCount)
	s.Equal(3, response.FailedCount)

	reloaded := s.reloadBatch(batch.ID)
	s.Equal(model.BatchStatus.FAILED, reloaded.Status)
	s.Equal(2, reloaded.SuccessCount)
	s.Equal(3, reloaded.FailedCount)
	s.NotNil(reloaded.CompletedAt)

	relations := s.reloadRelations(batch.ID)
	closedWithReason := 0
	for _, relation := range relations {
		if relation.ErrorMessage == "source account emptied" {
			s.Equal(model.RelationStatus.FAILED, relation.Status)
			closedWithReason++
		}
	}
	s.Equal(3, closedWithReason)
	s.Equal(model.RelationStatus.COMPLETED, relations[0].Status)
	s.Equal(model.RelationStatus.COMPLETED, relations[1].Status)
}

func (s *Suite) Test_CloseBatchTransfer_DefaultReasonAndTerminalRejection() {
	batch := s.seedBatch(model.BatchStatus.PENDING, []model.BatchTransferRelation{
		pendingRelation("a", "1"),
	})

	_, err := s.Service.CloseBatchTransfer(batch.ID, "")
	s.Require().NoError(err)

	relations := s.reloadRelations(batch.ID)
	s.Equal(utility.DEFAULT_CLOSE_REASON, relations[0].ErrorMessage)

	_, err = s.Service.CloseBatchTransfer(batch.ID, "")
	s.Require().Error(err)
	s.Equal(http.StatusConflict, err.(appError.Err).ErrCode)
}

func (s *Suite) Test_ExecuteThenRetry_EndToEnd() {
	request := dto.CreateBatchTransferRequest{
		Name:            "Payout run",
		Type:            model.BatchType.ONE_TO_MANY,
		SourceAccountID: 1,
		Relations: []dto.BatchRelationRequest{
			{ContactType: model.ContactType.UID, TargetIdentifier: "B", Amount: "10"},
			{ContactType: model.ContactType.UID, TargetIdentifier: "C", Amount: "20"},
		},
	}
	created, err := s.Service.CreateBatchTransfer(request)
	s.Require().NoError(err)
	s.Equal("30", created.TotalAmount)

	s.Executor.failTargets["C"] = "daily limit exceeded"
	executed, err := s.Service.ExecuteBatchTransfer(created.BatchID, false)
	s.Require().NoError(err)
	s.Equal(model.BatchStatus.COMPLETED, executed.Status)
	s.Equal(1, executed.SuccessCount)
	s.Equal(1, executed.FailedCount)

	delete(s.Executor.failTargets, "C")
	relations := s.reloadRelations(created.BatchID)
	retried, err := s.Service.RetryTransferRelation(relations[1].ID, true)
	s.Require().NoError(err)
	s.Equal(model.BatchStatus.COMPLETED, retried.Status)
	s.Equal(2, retried.SuccessCount)
	s.Equal(0, retried.FailedCount)

	histories, err := s.Service.ListHistories(created.BatchID)
	s.Require().NoError(err)
	// creation, execution pass, retry marker, retry finalization
	s.Require().Len(histories, 4)
	s.Equal(model.BatchStatus.COMPLETED, histories[0].Status)
	s.Require().NotNil(histories[1].RelationID)
	s.Equal(relations[1].ID, *histories[1].RelationID)
}

func (s *Suite) Test_InnerTargetDerivedFromMatchedAccount() {
	matched := int64(77)
	batch := s.seedBatch(model.BatchStatus.PENDING, []model.BatchTransferRelation{
		{
			SourceAccountID:  1,
			MatchedAccountID: &matched,
			ContactType:      model.ContactType.UID,
			Amount:           "1",
			Status:           model.RelationStatus.PENDING,
		},
	})

	_, err := s.Service.ExecuteBatchTransfer(batch.ID, false)
	s.Require().NoError(err)

	s.Require().Len(s.Executor.calls, 1)
	s.Equal(model.ContactType.INNER, s.Executor.calls[0].ContactType)
	s.Equal("77", s.Executor.calls[0].TargetIdentifier)
}
