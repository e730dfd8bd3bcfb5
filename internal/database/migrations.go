package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// compositeIndexes are the multi-column indexes the read paths rely on.
var compositeIndexes = []struct {
	table   string
	name    string
	columns string
}{
	// Audit log read-back is newest first per task
	{"task_status_logs", "idx_task_status_logs_task_created", "task_id, created_at"},

	// Completion analytics filter on target status per task
	{"task_status_logs", "idx_task_status_logs_task_to_status", "task_id, to_status"},

	// Budget recompute sums completed subtasks per task
	{"sub_tasks", "idx_sub_tasks_task_status", "task_id, status"},

	// Responsible lookup by user
	{"task_responsibles", "idx_task_responsibles_user_id", "user_id"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}

// MigrateDatabase runs the migrations that AutoMigrate cannot express
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
