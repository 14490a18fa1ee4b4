package model

import (
	"time"
)

type BTStatus struct {
	PENDING, PROCESSING, COMPLETED, FAILED string
}

type BTType struct {
	ONE_TO_MANY, MANY_TO_ONE string
}

var (
	BatchStatus = BTStatus{
		PENDING:    "pending",
		PROCESSING: "processing",
		COMPLETED:  "completed",
		FAILED:     "failed",
	}

	BatchType = BTType{
		ONE_TO_MANY: "one_to_many",
		MANY_TO_ONE: "many_to_one",
	}
)

// BatchTransfer ... One bulk transfer job, owning many relations
type BatchTransfer struct {
	BaseModel
	BatchNumber  string     `gorm:"type:VARCHAR(64);not null;unique_index" json:"batchNumber"`
	Name         string     `gorm:"type:VARCHAR(150);not null" json:"name"`
	Type         string     `gorm:"type:VARCHAR(20);not null" json:"type"`
	Status       string     `gorm:"index;not null;default:'pending'" json:"status"`
	TotalAmount  string     `gorm:"type:DECIMAL(20,6);not null" json:"totalAmount"`
	SuccessCount int        `gorm:"not null;default:0" json:"successCount"`
	FailedCount  int        `gorm:"not null;default:0" json:"failedCount"`
	Remarks      string     `gorm:"type:VARCHAR(300)" json:"remarks,omitempty"`
	CreatedBy    string     `gorm:"type:VARCHAR(100)" json:"createdBy,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}
