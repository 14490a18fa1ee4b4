package database

import (
	"time"

	"infini-manager/model"
	"infini-manager/utility/logger"
)

// IBatchTransferRepository ... Repository surface consumed by the batch transfer services
type IBatchTransferRepository interface {
	IRepository
	CreateBatchWithRelations(batch *model.BatchTransfer, relations []model.BatchTransferRelation, history *model.BatchTransferHistory) error
	FetchPendingRelations(batchID int64) ([]model.BatchTransferRelation, error)
	FetchResumableRelations(batchID int64, staleBefore time.Time) ([]model.BatchTransferRelation, error)
	CountRelationStatuses(batchID int64) (RelationStatusCount, error)
	FetchRelationsPaginated(batchID int64, status string, keyword string, page int, pageSize int) ([]model.BatchTransferRelation, int, error)
	FetchBatchesPaginated(page int, pageSize int) ([]model.BatchTransfer, int, error)
	FetchHistories(batchID int64) ([]model.BatchTransferHistory, error)
	FetchStuckBatches(staleBefore time.Time) ([]model.BatchTransfer, error)
}

// BatchTransferRepository ...
type BatchTransferRepository struct {
	BaseRepository
}

// RelationStatusCount ... Distribution of relation statuses for one batch
type RelationStatusCount struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// Unresolved ... Relations not yet in a terminal state
func (count RelationStatusCount) Unresolved() int {
	return count.Pending + count.Processing
}

// CreateBatchWithRelations ... Persists a batch, its relations and the creation history entry in one transaction
func (repo *BatchTransferRepository) CreateBatchWithRelations(batch *model.BatchTransfer, relations []model.BatchTransferRelation, history *model.BatchTransferHistory) error {
	tx := NewTx(repo.Db()).Create(batch)
	for i := range relations {
		relations[i].BatchID = batch.ID
		tx = tx.Create(&relations[i])
	}
	history.BatchID = batch.ID
	tx = tx.Create(history)

	if err := tx.Commit(); err != nil {
		logger.Error("Error with repository CreateBatchWithRelations : %s", err)
		return err
	}
	return nil
}

// FetchPendingRelations ... Pending relations of a batch in ascending id order, the processing order of a pass
func (repo *BatchTransferRepository) FetchPendingRelations(batchID int64) ([]model.BatchTransferRelation, error) {
	var relations []model.BatchTransferRelation
	if err := repo.DB.Where("batch_id = ? AND status = ?", batchID, model.RelationStatus.PENDING).
		Order("id asc").Find(&relations).Error; err != nil {
		logger.Error("Error with repository FetchPendingRelations : %s", err)
		return nil, repoError(err)
	}
	return relations, nil
}

// FetchResumableRelations ... Pending relations plus relations stuck in processing since before staleBefore
func (repo *BatchTransferRepository) FetchResumableRelations(batchID int64, staleBefore time.Time) ([]model.BatchTransferRelation, error) {
	var relations []model.BatchTransferRelation
	if err := repo.DB.Where("batch_id = ? AND (status = ? OR (status = ? AND updated_at < ?))",
		batchID, model.RelationStatus.PENDING, model.RelationStatus.PROCESSING, staleBefore).
		Order("id asc").Find(&relations).Error; err != nil {
		logger.Error("Error with repository FetchResumableRelations : %s", err)
		return nil, repoError(err)
	}
	return relations, nil
}

// CountRelationStatuses ... Single pass status distribution query for a batch
func (repo *BatchTransferRepository) CountRelationStatuses(batchID int64) (RelationStatusCount, error) {
	count := RelationStatusCount{}
	statusCountQuery := `SELECT COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
		COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0) AS processing,
		COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
		COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed
		FROM batch_transfer_relations WHERE batch_id = ?`
	if err := repo.DB.Raw(statusCountQuery, batchID).Scan(&count).Error; err != nil {
		logger.Error("Error with repository CountRelationStatuses : %s", err)
		return count, repoError(err)
	}
	return count, nil
}

// FetchRelationsPaginated ... Relations of a batch, filterable by status and target identifier keyword
func (repo *BatchTransferRepository) FetchRelationsPaginated(batchID int64, status string, keyword string, page int, pageSize int) ([]model.BatchTransferRelation, int, error) {
	var relations []model.BatchTransferRelation
	var total int

	query := repo.DB.Model(&model.BatchTransferRelation{}).Where("batch_id = ?", batchID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		query = query.Where("target_identifier LIKE ?", "%"+keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		logger.Error("Error with repository FetchRelationsPaginated count : %s", err)
		return nil, 0, repoError(err)
	}
	if err := query.Order("id asc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&relations).Error; err != nil {
		logger.Error("Error with repository FetchRelationsPaginated : %s", err)
		return nil, 0, repoError(err)
	}
	return relations, total, nil
}

// FetchBatchesPaginated ... Batches in reverse creation order
func (repo *BatchTransferRepository) FetchBatchesPaginated(page int, pageSize int) ([]model.BatchTransfer, int, error) {
	var batches []model.BatchTransfer
	var total int

	if err := repo.DB.Model(&model.BatchTransfer{}).Count(&total).Error; err != nil {
		logger.Error("Error with repository FetchBatchesPaginated count : %s", err)
		return nil, 0, repoError(err)
	}
	if err := repo.DB.Order("id desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&batches).Error; err != nil {
		logger.Error("Error with repository FetchBatchesPaginated : %s", err)
		return nil, 0, repoError(err)
	}
	return batches, total, nil
}

// FetchHistories ... Audit trail of a batch, most recent first
func (repo *BatchTransferRepository) FetchHistories(batchID int64) ([]model.BatchTransferHistory, error) {
	var histories []model.BatchTransferHistory
	if err := repo.DB.Where("batch_id = ?", batchID).Order("id desc").Find(&histories).Error; err != nil {
		logger.Error("Error with repository FetchHistories : %s", err)
		return nil, repoError(err)
	}
	return histories, nil
}

// FetchStuckBatches ... Batches left in processing with no relation activity since staleBefore
func (repo *BatchTransferRepository) FetchStuckBatches(staleBefore time.Time) ([]model.BatchTransfer, error) {
	var batches []model.BatchTransfer
	if err := repo.DB.Where("status = ? AND updated_at < ?", model.BatchStatus.PROCESSING, staleBefore).
		Find(&batches).Error; err != nil {
		logger.Error("Error with repository FetchStuckBatches : %s", err)
		return nil, repoError(err)
	}
	return batches, nil
}
