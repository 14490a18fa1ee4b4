package model

type RLStatus struct {
	PENDING, PROCESSING, COMPLETED, FAILED string
}

type CTType struct {
	UID, EMAIL, INNER string
}

var (
	RelationStatus = RLStatus{
		PENDING:    "pending",
		PROCESSING: "processing",
		COMPLETED:  "completed",
		FAILED:     "failed",
	}

	ContactType = CTType{
		UID:   "uid",
		EMAIL: "email",
		INNER: "inner",
	}
)

// BatchTransferRelation ... One intended transfer inside a batch, created atomically with it
type BatchTransferRelation struct {
	BaseModel
	BatchID          int64  `gorm:"index;not null" json:"batchId"`
	SourceAccountID  int64  `gorm:"not null" json:"sourceAccountId"`
	MatchedAccountID *int64 `json:"matchedAccountId,omitempty"`
	ContactType      string `gorm:"type:VARCHAR(10);not null" json:"contactType"`
	TargetIdentifier string `gorm:"type:VARCHAR(150)" json:"targetIdentifier,omitempty"`
	Amount           string `gorm:"type:DECIMAL(20,6);not null" json:"amount"`
	Status           string `gorm:"index;not null;default:'pending'" json:"status"`
	TransferID       string `gorm:"type:VARCHAR(64)" json:"transferId,omitempty"`
	ErrorMessage     string `gorm:"type:TEXT" json:"errorMessage,omitempty"`
}
