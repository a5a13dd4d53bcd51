package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/battle-arena/internal/domain/battlestats"
	qb "github.com/riskibarqy/battle-arena/internal/platform/querybuilder"
)

type battleStatsTableModel struct {
	UserID         string    `db:"user_id"`
	TotalBattles   int       `db:"total_battles"`
	Wins           int       `db:"wins"`
	Losses         int       `db:"losses"`
	Draws          int       `db:"draws"`
	CurrentStreak  int       `db:"current_streak"`
	BestStreak     int       `db:"best_streak"`
	TotalVotesCast int       `db:"total_votes_cast"`
	CorrectVotes   int       `db:"correct_votes"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type battleStatsSeedModel struct {
	UserID    string    `db:"user_id"`
	UpdatedAt time.Time `db:"updated_at"`
}

type votesCastModel struct {
	UserID         string    `db:"user_id"`
	TotalVotesCast int       `db:"total_votes_cast"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type correctVotesModel struct {
	UserID       string    `db:"user_id"`
	CorrectVotes int       `db:"correct_votes"`
	UpdatedAt    time.Time `db:"updated_at"`
}

var battleStatsColumns = []string{
	"user_id",
	"total_battles",
	"wins",
	"losses",
	"draws",
	"current_streak",
	"best_streak",
	"total_votes_cast",
	"correct_votes",
	"updated_at",
}

type BattleStatsRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewBattleStatsRepository(db *sqlx.DB) *BattleStatsRepository {
	return &BattleStatsRepository{db: db, now: time.Now}
}

func (r *BattleStatsRepository) Get(ctx context.Context, userID string) (battlestats.Stats, bool, error) {
	query, args, err := qb.Select(battleStatsColumns...).From("battle_user_stats").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return battlestats.Stats{}, false, fmt.Errorf("build get battle stats query: %w", err)
	}

	var row battleStatsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return battlestats.Stats{}, false, nil
		}
		return battlestats.Stats{}, false, fmt.Errorf("get battle stats: %w", err)
	}

	return battleStatsFromRow(row), true, nil
}

// RecordOutcome locks the stats row and applies the streak arithmetic in Go.
func (r *BattleStatsRepository) RecordOutcome(ctx context.Context, userID string, outcome battlestats.Outcome) (battlestats.StreakResult, error) {
	now := r.now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return battlestats.StreakResult{}, fmt.Errorf("begin tx record battle outcome: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := ensureBattleStatsRow(ctx, tx, userID, now); err != nil {
		return battlestats.StreakResult{}, err
	}

	lockQuery, lockArgs, err := lockBattleStatsQuery(userID)
	if err != nil {
		return battlestats.StreakResult{}, fmt.Errorf("build lock battle stats query: %w", err)
	}
	var row battleStatsTableModel
	if err := tx.GetContext(ctx, &row, lockQuery, lockArgs...); err != nil {
		return battlestats.StreakResult{}, fmt.Errorf("lock battle stats: %w", err)
	}

	next, milestone, err := battlestats.ApplyOutcome(battleStatsFromRow(row), outcome)
	if err != nil {
		return battlestats.StreakResult{}, err
	}

	updateQuery, updateArgs, err := recordOutcomeQuery(next, now)
	if err != nil {
		return battlestats.StreakResult{}, fmt.Errorf("build record battle outcome query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
		return battlestats.StreakResult{}, fmt.Errorf("record battle outcome: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return battlestats.StreakResult{}, fmt.Errorf("commit record battle outcome tx: %w", err)
	}

	return battlestats.StreakResult{
		CurrentStreak: next.CurrentStreak,
		BestStreak:    next.BestStreak,
		Milestone:     milestone,
	}, nil
}

func lockBattleStatsQuery(userID string) (string, []any, error) {
	return qb.Select(battleStatsColumns...).From("battle_user_stats").
		Where(qb.Eq("user_id", userID)).
		ForUpdate("FOR UPDATE").
		ToSQL()
}

func recordOutcomeQuery(next battlestats.Stats, now time.Time) (string, []any, error) {
	return qb.Update("battle_user_stats").
		Set("total_battles", next.TotalBattles).
		Set("wins", next.Wins).
		Set("losses", next.Losses).
		Set("draws", next.Draws).
		Set("current_streak", next.CurrentStreak).
		Set("best_streak", next.BestStreak).
		Set("updated_at", now).
		Where(qb.Eq("user_id", next.UserID)).
		ToSQL()
}

func ensureBattleStatsRow(ctx context.Context, tx *sqlx.Tx, userID string, now time.Time) error {
	query, args, err := qb.InsertModel("battle_user_stats", qb.DoNothing("user_id"),
		battleStatsSeedModel{UserID: userID, UpdatedAt: now})
	if err != nil {
		return fmt.Errorf("build ensure battle stats query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("ensure battle stats: %w", err)
	}
	return nil
}

func (r *BattleStatsRepository) IncrementVotesCast(ctx context.Context, userID string) error {
	query, args, err := incrementVotesCastQuery(userID, r.now().UTC())
	if err != nil {
		return fmt.Errorf("build increment votes cast query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("increment votes cast: %w", err)
	}

	return nil
}

func incrementVotesCastQuery(userID string, now time.Time) (string, []any, error) {
	return qb.InsertModel("battle_user_stats", qb.Conflict{
		Target:  []string{"user_id"},
		Add:     []string{"total_votes_cast"},
		Replace: []string{"updated_at"},
	}, votesCastModel{UserID: userID, TotalVotesCast: 1, UpdatedAt: now})
}

func (r *BattleStatsRepository) IncrementCorrectVotes(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	query, args, err := incrementCorrectVotesQuery(userIDs, r.now().UTC())
	if err != nil {
		return fmt.Errorf("build increment correct votes query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("increment correct votes: %w", err)
	}

	return nil
}

// incrementCorrectVotesQuery dedupes first; one upsert cannot touch a row twice.
func incrementCorrectVotesQuery(userIDs []string, now time.Time) (string, []any, error) {
	unique := dedupeStrings(userIDs)
	rows := make([]any, 0, len(unique))
	for _, userID := range unique {
		rows = append(rows, correctVotesModel{UserID: userID, CorrectVotes: 1, UpdatedAt: now})
	}
	return qb.InsertModel("battle_user_stats", qb.Conflict{
		Target:  []string{"user_id"},
		Add:     []string{"correct_votes"},
		Replace: []string{"updated_at"},
	}, rows...)
}

func battleStatsFromRow(row battleStatsTableModel) battlestats.Stats {
	return battlestats.Stats{
		UserID:         row.UserID,
		TotalBattles:   row.TotalBattles,
		Wins:           row.Wins,
		Losses:         row.Losses,
		Draws:          row.Draws,
		CurrentStreak:  row.CurrentStreak,
		BestStreak:     row.BestStreak,
		TotalVotesCast: row.TotalVotesCast,
		CorrectVotes:   row.CorrectVotes,
		UpdatedAt:      row.UpdatedAt,
	}
}
