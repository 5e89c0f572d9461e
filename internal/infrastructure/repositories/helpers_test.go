package repositories

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "open sqlite")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory database free of table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createParticipantTable(t *testing.T, db *gorm.DB) {
	t.Helper()
	mustExec(t, db, `CREATE TABLE participants (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		bio TEXT NOT NULL DEFAULT '',
		github_url TEXT,
		linkedin_url TEXT,
		portfolio_url TEXT,
		technical_skills TEXT NOT NULL DEFAULT '{}',
		soft_skills TEXT NOT NULL DEFAULT '{}',
		interests TEXT NOT NULL DEFAULT '{}',
		role_preference TEXT,
		experience_level TEXT,
		availability_status TEXT NOT NULL DEFAULT 'Available',
		availability_updated_at DATETIME,
		team_id TEXT,
		is_boosted BOOLEAN NOT NULL DEFAULT false,
		boost_reason TEXT,
		boost_date DATETIME,
		invites_received INTEGER NOT NULL DEFAULT 0,
		profile_views INTEGER NOT NULL DEFAULT 0,
		profile_locked BOOLEAN NOT NULL DEFAULT false,
		last_active DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTeamTables(t *testing.T, db *gorm.DB) {
	t.Helper()
	mustExec(t, db, `CREATE TABLE teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		leader_id TEXT NOT NULL,
		max_members INTEGER NOT NULL DEFAULT 4,
		looking_for TEXT,
		balance_score INTEGER NOT NULL DEFAULT 0,
		role_diversity INTEGER NOT NULL DEFAULT 0,
		skill_spread INTEGER NOT NULL DEFAULT 0,
		soft_skill_coverage INTEGER NOT NULL DEFAULT 0,
		meeting_link TEXT NOT NULL DEFAULT '',
		card_generated BOOLEAN NOT NULL DEFAULT false,
		card_last_generated DATETIME,
		card_summary TEXT NOT NULL DEFAULT '',
		is_complete BOOLEAN NOT NULL DEFAULT false,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE team_members (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL,
		participant_id TEXT NOT NULL UNIQUE,
		role TEXT,
		joined_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE team_invites (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL,
		participant_id TEXT NOT NULL,
		invited_by TEXT NOT NULL,
		role TEXT,
		message TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		sent_at DATETIME,
		expires_at DATETIME,
		responded_at DATETIME
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX idx_team_invites_pending ON team_invites(team_id, participant_id) WHERE status = 'Pending';`)
	mustExec(t, db, `CREATE TABLE team_join_requests (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL,
		participant_id TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		requested_at DATETIME,
		responded_at DATETIME
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX idx_team_join_requests_pending ON team_join_requests(team_id, participant_id) WHERE status = 'Pending';`)
}
