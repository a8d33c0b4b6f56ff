package db

import (
	"context"
	"database/sql"
	"log"
)

// schema is applied statement by statement by Migrate. Every statement is
// idempotent so the command can be rerun on an existing database.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS login (
	user_name     VARCHAR(64)  NOT NULL PRIMARY KEY,
	password_hash VARCHAR(255) NOT NULL,
	role          VARCHAR(16)  NOT NULL DEFAULT 'admin',
	is_disabled   TINYINT(1)   NOT NULL DEFAULT 0,
	created_at    DATETIME(6)  NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS session_kv (
	session_id CHAR(26)     NOT NULL,
	k          VARCHAR(32)  NOT NULL,
	v          TEXT         NOT NULL,
	updated_at DATETIME(6)  NOT NULL,
	PRIMARY KEY (session_id, k)
)`,
	`CREATE TABLE IF NOT EXISTS data_generus (
	id            BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
	nama          VARCHAR(128) NOT NULL,
	jenis_kelamin CHAR(1)      NOT NULL,
	kelompok      VARCHAR(32)  NOT NULL,
	status        VARCHAR(32)  NOT NULL,
	tgl_lahir     DATE         NULL,
	created_at    DATETIME(6)  NOT NULL,
	KEY idx_generus_nama (nama)
)`,
	`CREATE TABLE IF NOT EXISTS kegiatan (
	id         BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
	nama_giat  VARCHAR(128) NOT NULL,
	tgl_giat   DATE         NOT NULL,
	tempat     VARCHAR(128) NOT NULL,
	created_at DATETIME(6)  NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS absensi (
	id               BIGINT      NOT NULL AUTO_INCREMENT PRIMARY KEY,
	kegiatan_id      BIGINT      NOT NULL,
	generus_id       BIGINT      NOT NULL,
	status_kehadiran VARCHAR(8)  NOT NULL DEFAULT 'Belum',
	created_at       DATETIME(6) NOT NULL,
	updated_at       DATETIME(6) NOT NULL,
	UNIQUE KEY uq_absensi_kegiatan_generus (kegiatan_id, generus_id),
	CONSTRAINT fk_absensi_kegiatan FOREIGN KEY (kegiatan_id) REFERENCES kegiatan (id),
	CONSTRAINT fk_absensi_generus  FOREIGN KEY (generus_id) REFERENCES data_generus (id)
)`,
	`CREATE TABLE IF NOT EXISTS grup (
	id          BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
	id_kegiatan BIGINT       NOT NULL,
	generus_id  BIGINT       NOT NULL,
	nama        VARCHAR(128) NOT NULL,
	no_grup     TINYINT      NOT NULL,
	kelompok    VARCHAR(32)  NOT NULL,
	UNIQUE KEY uq_grup_kegiatan_generus (id_kegiatan, generus_id),
	CONSTRAINT fk_grup_kegiatan FOREIGN KEY (id_kegiatan) REFERENCES kegiatan (id),
	CONSTRAINT fk_grup_generus  FOREIGN KEY (generus_id) REFERENCES data_generus (id)
)`,
}

func Migrate(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	log.Printf("[INFO] schema applied (%d statements)", len(schema))
	return nil
}
