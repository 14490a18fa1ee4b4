package database

import (
	"infini-manager/model"
)

// RunDbMigrations ... This creates corresponding tables for models on the db and watches the models for field additions
func (database *Database) RunDbMigrations() {
	database.DB.AutoMigrate(&model.BatchTransfer{}, &model.BatchTransferRelation{}, &model.BatchTransferHistory{})
	database.DB.Model(&model.BatchTransferRelation{}).AddForeignKey("batch_id", "batch_transfers(id)", "CASCADE", "CASCADE")
	database.DB.Model(&model.BatchTransferHistory{}).AddForeignKey("batch_id", "batch_transfers(id)", "CASCADE", "CASCADE")
}
