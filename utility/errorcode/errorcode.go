package errorcode

// SQL_404 matches the error text gorm returns for a missing record
const SQL_404 = "record not found"

const (
	RECORD_NOT_FOUND       = "RECORD_NOT_FOUND"
	INPUT_ERR_CODE         = "INPUT_ERR"
	VALIDATION_ERR_CODE    = "VALIDATION_ERR"
	STATE_CONFLICT_ERR     = "STATE_CONFLICT_ERR"
	SERVER_ERR_CODE        = "SYSTEM_ERR"
	SVCS_TRANSFER_ERR      = "SVCS_TRANSFER_ERR"
	LOCK_ERR_CODE          = "LOCK_ERR"
	DUPLICATE_TARGET_ERR   = "Duplicate target identifiers in batch transfer request"
	DUPLICATE_SOURCE_ERR   = "Duplicate source accounts in batch transfer request"
	INVALID_AMOUNT_ERR     = "Relation amount is not a valid decimal value"
	BATCH_NOT_FOUND_ERR    = "Batch transfer record not found"
	RELATION_NOT_FOUND_ERR = "Batch transfer relation record not found"
)
