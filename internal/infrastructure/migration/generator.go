package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/drover-dev/drover/internal/shared/logger"
)

// Generator handles creation of new migration files
type Generator struct {
	scriptsPath string
	logger      logger.Interface
}

// NewGenerator creates a new migration generator
func NewGenerator(scriptsPath string, log logger.Interface) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		logger:      log.With("component", "migration.generator"),
	}
}

// CreateMigration creates a new timestamped goose migration file
func (g *Generator) CreateMigration(name string) error {
	g.logger.Infow("creating new migration", "name", name)

	timestamp := time.Now().Format("20060102150405")
	fileName := fmt.Sprintf("%s_%s.sql", timestamp, name)
	filePath := filepath.Join(g.scriptsPath, fileName)

	if err := os.MkdirAll(g.scriptsPath, 0755); err != nil {
		return fmt.Errorf("failed to create scripts directory: %w", err)
	}

	content := g.generateMigrationTemplate(name)
	if err := g.writeFile(filePath, content); err != nil {
		return fmt.Errorf("failed to create migration file: %w", err)
	}

	g.logger.Infow("migration file created successfully", "file", filePath)
	return nil
}

// writeFile writes content to a file
func (g *Generator) writeFile(filePath, content string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(content)
	return err
}

// generateMigrationTemplate generates an empty goose migration template
func (g *Generator) generateMigrationTemplate(name string) string {
	return fmt.Sprintf(`-- Migration: %s
-- Created: %s

-- +goose Up
-- Add your SQL statements here

-- +goose Down
-- Add your rollback SQL statements here
`, name, time.Now().Format("2006-01-02 15:04:05"))
}

// CreateBaselineMigration writes the initial schema migrations. Deployments
// that run from a bare binary use this to seed an empty scripts directory
// before running up.
func (g *Generator) CreateBaselineMigration() error {
	g.logger.Infow("creating baseline schema migrations")

	if err := os.MkdirAll(g.scriptsPath, 0755); err != nil {
		return fmt.Errorf("failed to create scripts directory: %w", err)
	}

	for _, m := range baselineMigrations {
		filePath := filepath.Join(g.scriptsPath, m.name)
		if err := g.writeFile(filePath, m.content); err != nil {
			return fmt.Errorf("failed to create baseline migration %s: %w", m.name, err)
		}
		g.logger.Infow("baseline migration created", "file", filePath)
	}
	return nil
}

// baselineMigrations mirrors the committed scripts/ directory.
var baselineMigrations = []struct {
	name    string
	content string
}{
	{"00001_create_clients.sql", baselineClients},
	{"00002_create_versions.sql", baselineVersions},
	{"00003_create_update_logs.sql", baselineUpdateLogs},
}

const baselineClients = `-- Migration: Create clients table
-- Description: registered update clients with hashed bearer tokens

-- +goose Up
CREATE TABLE IF NOT EXISTS clients (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    sid VARCHAR(20) NOT NULL,
    name VARCHAR(100) NOT NULL,
    token_hash VARCHAR(64) NOT NULL,
    current_version VARCHAR(64) NULL,
    target_version VARCHAR(64) NULL,
    last_seen_at TIMESTAMP NULL,
    config JSON NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP NULL,
    UNIQUE KEY idx_client_sid (sid),
    UNIQUE KEY idx_client_name (name),
    UNIQUE KEY idx_client_token_hash (token_hash),
    KEY idx_client_last_seen_at (last_seen_at),
    KEY idx_clients_deleted_at (deleted_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;

-- +goose Down
DROP TABLE IF EXISTS clients;
`

const baselineVersions = `-- Migration: Create versions table
-- Description: published software versions and their artifact metadata

-- +goose Up
CREATE TABLE IF NOT EXISTS versions (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    sid VARCHAR(20) NOT NULL,
    version VARCHAR(64) NOT NULL,
    checksum CHAR(64) NOT NULL,
    size BIGINT NOT NULL,
    artifact_path VARCHAR(255) NOT NULL,
    release_notes TEXT,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    UNIQUE KEY idx_version_sid (sid),
    UNIQUE KEY idx_version_version (version),
    KEY idx_version_is_active (is_active)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;

-- +goose Down
DROP TABLE IF EXISTS versions;
`

const baselineUpdateLogs = `-- Migration: Create update_logs table
-- Description: the per-client update ledger

-- +goose Up
CREATE TABLE IF NOT EXISTS update_logs (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    sid VARCHAR(20) NOT NULL,
    client_id BIGINT UNSIGNED NOT NULL,
    from_version VARCHAR(64) NULL,
    to_version VARCHAR(64) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    is_rollback BOOLEAN NOT NULL DEFAULT FALSE,
    error_message TEXT NULL,
    started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    completed_at TIMESTAMP NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    UNIQUE KEY idx_update_log_sid (sid),
    KEY idx_update_log_client_status (client_id, status),
    CONSTRAINT fk_update_logs_client FOREIGN KEY (client_id) REFERENCES clients (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;

-- +goose Down
DROP TABLE IF EXISTS update_logs;
`
