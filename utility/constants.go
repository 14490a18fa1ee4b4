package utility

const (
	SUCCESS        = "Request Proccessed Successfully"
	INPUT_ERR      = "Invalid Input Supplied. See documentation"
	SYSTEM_ERR     = "Request Could Not Be Proccessed. Server encountered an error"
	VALIDATION_ERR = "Validation Failed For Some Fields"
	ID_CAST_ERR    = "Cannot cast Id, ensure to be passing a valid numeric id"

	BATCH_SOURCE_TAG            = "batch"
	BATCH_NUMBER_PREFIX         = "BT"
	BATCH_LOCK_PREFIX           = "Batch-Transfer-Lock-"
	DEFAULT_CLOSE_REASON        = "Batch transfer manually closed"
	NO_PENDING_RELATIONS        = "No pending transfer relations to process"
	DEFAULT_PAGE_SIZE           = 20
	MAX_PAGE_SIZE               = 100
	BATCH_LOCK_TTL_MS           = 600000
	MIN_WAIT_TIME_IN_PROCESSING = 120 // In seconds, before a stuck relation is reclaimed
)
