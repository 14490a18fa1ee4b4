package model

// BatchTransferHistory ... Append-only audit record of a batch state change, never updated or deleted
type BatchTransferHistory struct {
	BaseModel
	BatchID    int64  `gorm:"index;not null" json:"batchId"`
	RelationID *int64 `json:"relationId,omitempty"`
	Status     string `gorm:"type:VARCHAR(20);not null" json:"status"`
	Message    string `gorm:"type:TEXT" json:"message"`
	Details    string `gorm:"type:TEXT" json:"details,omitempty"`
}
