package services

import (
	"net/http"

	"infini-manager/dto"
	"infini-manager/model"
	"infini-manager/utility/appError"
	"infini-manager/utility/errorcode"
)

func (s *Suite) Test_CreateBatchTransfer_PersistsBatchRelationsAndHistory() {
	request := dto.CreateBatchTransferRequest{
		Name:            "March payouts",
		Type:            model.BatchType.ONE_TO_MANY,
		SourceAccountID: 10,
		Relations: []dto.BatchRelationRequest{
			{ContactType: model.ContactType.UID, TargetIdentifier: "user-1", Amount: "10"},
			{ContactType: model.ContactType.EMAIL, TargetIdentifier: "two@infini.local", Amount: "20"},
		},
		CreatedBy: "ops",
	}

	response, err := s.Service.CreateBatchTransfer(request)
	s.Require().NoError(err)
	s.NotZero(response.BatchID)
	s.Equal("30", response.TotalAmount)
	s.Equal(2, response.RelationsCount)
	s.Contains(response.BatchNumber, "BT")

	batch := s.reloadBatch(response.BatchID)
	s.Equal(model.BatchStatus.PENDING, batch.Status)
	s.Equal("30", batch.TotalAmount)
	s.Nil(batch.CompletedAt)

	relations := s.reloadRelations(response.BatchID)
	s.Require().Len(relations, 2)
	for _, relation := range relations {
		s.Equal(model.RelationStatus.PENDING, relation.Status)
		s.Equal(int64(10), relation.SourceAccountID)
	}

	histories, err := s.Repository.FetchHistories(response.BatchID)
	s.Require().NoError(err)
	s.Require().Len(histories, 1)
	s.Equal(model.BatchStatus.PENDING, histories[0].Status)
}

func (s *Suite) Test_CreateBatchTransfer_ManyToOneMapsSourcesAndTarget() {
	request := dto.CreateBatchTransferRequest{
		Name:            "Collections",
		Type:            model.BatchType.MANY_TO_ONE,
		TargetAccountID: 99,
		Relations: []dto.BatchRelationRequest{
			{AccountID: 5, ContactType: model.ContactType.INNER, Amount: "7.50"},
			{AccountID: 6, ContactType: model.ContactType.INNER, Amount: "2.50"},
		},
	}

	response, err := s.Service.CreateBatchTransfer(request)
	s.Require().NoError(err)
	s.Equal("10", response.TotalAmount)

	relations := s.reloadRelations(response.BatchID)
	s.Require().Len(relations, 2)
	s.Equal(int64(5), relations[0].SourceAccountID)
	s.Equal(int64(6), relations[1].SourceAccountID)
	for _, relation := range relations {
		s.Require().NotNil(relation.MatchedAccountID)
		s.Equal(int64(99), *relation.MatchedAccountID)
	}
}

func (s *Suite) Test_CreateBatchTransfer_RejectsMalformedAmount() {
	request := dto.CreateBatchTransferRequest{
		Name:            "Broken",
		Type:            model.BatchType.ONE_TO_MANY,
		SourceAccountID: 10,
		Relations: []dto.BatchRelationRequest{
			{ContactType: model.ContactType.UID, TargetIdentifier: "user-1", Amount: "10"},
			{ContactType: model.ContactType.UID, TargetIdentifier: "user-2", Amount: "12.3.4"},
		},
	}

	_, err := s.Service.CreateBatchTransfer(request)
	s.Require().Error(err)
	appErr := err.(appError.Err)
	s.Equal(http.StatusBadRequest, appErr.ErrCode)
	s.Equal(errorcode.INPUT_ERR_CODE, appErr.ErrType)

	var count int
	s.DB.Model(&model.BatchTransfer{}).Count(&count)
	s.Equal(0, count)
	s.DB.Model(&model.BatchTransferRelation{}).Count(&count)
	s.Equal(0, count)
}

func (s *Suite) Test_CreateBatchTransfer_RejectsDuplicateTargets() {
	request := dto.CreateBatchTransferRequest{
		Name:            "Duplicates",
		Type:            model.BatchType.ONE_TO_MANY,
		SourceAccountID: 10,
		Relations: []dto.BatchRelationRequest{
			{ContactType: model.ContactType.UID, TargetIdentifier: "user-1", Amount: "10"},
			{ContactType: model.ContactType.UID, TargetIdentifier: "user-1", Amount: "20"},
		},
	}

	_, err := s.Service.CreateBatchTransfer(request)
	s.Require().Error(err)
	appErr := err.(appError.Err)
	s.Equal(http.StatusBadRequest, appErr.ErrCode)
	s.Equal([]string{"user-1"}, appErr.ErrData)

	var count int
	s.DB.Model(&model.BatchTransfer{}).Count(&count)
	s.Equal(0, count)
}

func (s *Suite) Test_CreateBatchTransfer_RejectsDuplicateSources() {
	request := dto.CreateBatchTransferRequest{
		Name:            "Duplicates",
		Type:            model.BatchType.MANY_TO_ONE,
		TargetAccountID: 99,
		Relations: []dto.BatchRelationRequest{
			{AccountID: 5, ContactType: model.ContactType.INNER, Amount: "10"},
			{AccountID: 5, ContactType: model.ContactType.INNER, Amount: "20"},
		},
	}

	_, err := s.Service.CreateBatchTransfer(request)
	s.Require().Error(err)
	appErr := err.(appError.Err)
	s.Equal(http.StatusBadRequest, appErr.ErrCode)
	s.Equal([]string{"5"}, appErr.ErrData)
}

func (s *Suite) Test_CreateBatchTransfer_RejectsMissingSourceAccount() {
	request := dto.CreateBatchTransferRequest{
		Name: "No source",
		Type: model.BatchType.ONE_TO_MANY,
		Relations: []dto.BatchRelationRequest{
			{ContactType: model.ContactType.UID, TargetIdentifier: "user-1", Amount: "10"},
		},
	}

	_, err := s.Service.CreateBatchTransfer(request)
	s.Require().Error(err)
	s.Equal(http.StatusBadRequest, err.(appError.Err).ErrCode)
}

func (s *Suite) Test_GetBatchTransfer_UnknownBatchReturnsNotFound() {
	_, err := s.Service.GetBatchTransfer(424242)
	s.Require().Error(err)
	appErr := err.(appError.Err)
	s.Equal(http.StatusNotFound, appErr.ErrCode)
	s.Equal(errorcode.RECORD_NOT_FOUND, appErr.ErrType)
}

func (s *Suite) Test_GetProgress_ReportsDistributionAndPercentage() {
	batch := s.seedBatch(model.BatchStatus.PROCESSING, []model.BatchTransferRelation{
		relationWithStatus("a", "1", model.RelationStatus.COMPLETED),
		relationWithStatus("b", "1", model.RelationStatus.FAILED),
		relationWithStatus("c", "1", model.RelationStatus.PENDING),
		relationWithStatus("d", "1", model.RelationStatus.PENDING),
	})

	progress, err := s.Service.GetProgress(batch.ID)
	s.Require().NoError(err)
	s.Equal(4, progress.Total)
	s.Equal(1, progress.Completed)
	s.Equal(1, progress.Failed)
	s.Equal(2, progress.Pending)
	s.Equal("50.00", progress.ProgressPercent)
}

func (s *Suite) Test_ListRelations_FiltersByStatusAndKeyword() {
	batch := s.seedBatch(model.BatchStatus.PROCESSING, []model.BatchTransferRelation{
		relationWithStatus("alice@infini.local", "1", model.RelationStatus.COMPLETED),
		relationWithStatus("bob@infini.local", "1", model.RelationStatus.FAILED),
		relationWithStatus("carol@infini.local", "1", model.RelationStatus.FAILED),
	})

	listing, err := s.Service.ListRelations(batch.ID, model.RelationStatus.FAILED, "", 0, 0)
	s.Require().NoError(err)
	s.Equal(2, listing.Total)
	s.Len(listing.Relations, 2)

	listing, err = s.Service.ListRelations(batch.ID, "", "carol", 1, 10)
	s.Require().NoError(err)
	s.Equal(1, listing.Total)
	s.Require().Len(listing.Relations, 1)
	s.Equal("carol@infini.local", listing.Relations[0].TargetIdentifier)
}

func (s *Suite) Test_ListBatchTransfers_ReverseCreationOrder() {
	first := s.seedBatch(model.BatchStatus.PENDING, nil)
	second := s.seedBatch(model.BatchStatus.PENDING, nil)

	listing, err := s.Service.ListBatchTransfers(1, 10)
	s.Require().NoError(err)
	s.Equal(2, listing.Total)
	s.Require().Len(listing.Batches, 2)
	s.Equal(second.ID, listing.Batches[0].ID)
	s.Equal(first.ID, listing.Batches[1].ID)
}
