package dto

import (
	"infini-manager/model"
)

// CreateBatchTransferRequest ... Model definition for the batch transfer creation request
type CreateBatchTransferRequest struct {
	Name            string                 `json:"name" validate:"required"`
	Type            string                 `json:"type" validate:"required,oneof=one_to_many many_to_one"`
	SourceAccountID int64                  `json:"sourceAccountId,omitempty"`
	TargetAccountID int64                  `json:"targetAccountId,omitempty"`
	Relations       []BatchRelationRequest `json:"relations" validate:"required,min=1,dive"`
	Remarks         string                 `json:"remarks,omitempty"`
	CreatedBy       string                 `json:"createdBy,omitempty"`
}

// BatchRelationRequest ... One intended transfer inside the creation request
type BatchRelationRequest struct {
	AccountID        int64  `json:"accountId,omitempty"`
	ContactType      string `json:"contactType" validate:"required,oneof=uid email inner"`
	TargetIdentifier string `json:"targetIdentifier,omitempty"`
	Amount           string `json:"amount" validate:"required"`
}

// CloseBatchTransferRequest ...
type CloseBatchTransferRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ExecuteBatchTransferRequest ...
type ExecuteBatchTransferRequest struct {
	Auto2FA bool `json:"auto2FA,omitempty"`
}

// CreateBatchTransferResponse ...
type CreateBatchTransferResponse struct {
	BatchID        int64  `json:"batchId"`
	BatchNumber    string `json:"batchNumber"`
	TotalAmount    string `json:"totalAmount"`
	RelationsCount int    `json:"relationsCount"`
}

// ExecuteBatchTransferResponse ... Shared by execute, resume and retry operations
type ExecuteBatchTransferResponse struct {
	BatchID      int64  `json:"batchId"`
	SuccessCount int    `json:"successCount"`
	FailedCount  int    `json:"failedCount"`
	Status       string `json:"status"`
}

// CloseBatchTransferResponse ...
type CloseBatchTransferResponse struct {
	BatchID              int64 `json:"batchId"`
	ClosedRelationsCount int   `json:"closedRelationsCount"`
	CompletedCount       int   `json:"completedCount"`
	FailedCount          int   `json:"failedCount"`
}

// BatchTransferProgress ... Aggregate progress summary for one batch
type BatchTransferProgress struct {
	BatchID         int64  `json:"batchId"`
	Status          string `json:"status"`
	Total           int    `json:"total"`
	Pending         int    `json:"pending"`
	Processing      int    `json:"processing"`
	Completed       int    `json:"completed"`
	Failed          int    `json:"failed"`
	ProgressPercent string `json:"progressPercent"`
}

// BatchTransferDetail ...
type BatchTransferDetail struct {
	Batch    model.BatchTransfer   `json:"batch"`
	Progress BatchTransferProgress `json:"progress"`
}

// RelationListResponse ... Paginated relation listing
type RelationListResponse struct {
	Relations []model.BatchTransferRelation `json:"relations"`
	Page      int                           `json:"page"`
	PageSize  int                           `json:"pageSize"`
	Total     int                           `json:"total"`
}

// BatchTransferListResponse ... Paginated batch listing
type BatchTransferListResponse struct {
	Batches  []model.BatchTransfer `json:"batches"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
	Total    int                   `json:"total"`
}
