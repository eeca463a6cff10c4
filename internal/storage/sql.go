package storage

const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS drops (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time    DATETIME NOT NULL,
    source_type   TEXT NOT NULL,
    source_id     TEXT NOT NULL,
    vhf_frequency REAL NOT NULL,
    vhf_channel   REAL NOT NULL,
    config        TEXT
);

CREATE TABLE IF NOT EXISTS readings (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    drop_id     INTEGER NOT NULL REFERENCES drops (id),
    elapsed     REAL NOT NULL,
    frequency   REAL NOT NULL,
    signal      REAL NOT NULL,
    ratio       REAL NOT NULL,
    temperature REAL,
    depth       REAL
);

CREATE TABLE IF NOT EXISTS fixes (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    drop_id   INTEGER NOT NULL REFERENCES drops (id),
    timestamp DATETIME NOT NULL,
    latitude  REAL,
    longitude REAL
);`

// Indexes are created on Close, after the bulk of the inserts.
const initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_readings_drop ON readings (drop_id, elapsed);
CREATE INDEX IF NOT EXISTS idx_fixes_drop ON fixes (drop_id, timestamp);`

const (
	insertDropSQL = `
INSERT INTO drops (
                   start_time,
                   source_type,
                   source_id,
                   vhf_frequency,
                   vhf_channel,
                   config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?, ?, ?)`

	selectDropSQL = `
SELECT
    id,
    start_time,
    source_type,
    source_id,
    vhf_frequency,
    vhf_channel,
    config
FROM drops
WHERE
    id = ?`

	selectDropsSQL = `
SELECT
    id,
    start_time,
    source_type,
    source_id,
    vhf_frequency,
    vhf_channel,
    config
FROM drops
ORDER BY start_time`

	insertFixSQL = `
INSERT INTO fixes (drop_id,
                   timestamp,
                   latitude,
                   longitude)
VALUES (?, ?, ?, ?)`

	insertReadingSQL = `
    INSERT INTO readings (
        drop_id,
        elapsed,
        frequency,
        signal,
        ratio,
        temperature,
        depth
    )
    VALUES `

	selectReadingsWithIDSQL = `
SELECT
    id,
    elapsed,
    frequency,
    signal,
    ratio,
    temperature,
    depth
FROM readings
WHERE
    drop_id = ? AND id > ?
ORDER BY id
LIMIT ?`

	selectLastFixSQL = `
SELECT
    timestamp,
    latitude,
    longitude
FROM fixes
WHERE
    drop_id = ?
ORDER BY timestamp DESC
LIMIT 1`
)
