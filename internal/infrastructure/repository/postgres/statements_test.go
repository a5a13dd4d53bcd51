package postgres

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	"github.com/riskibarqy/battle-arena/internal/domain/battlestats"
)

type builtStatement func() (string, []any, error)

func TestBattleStatements(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(24 * time.Hour)
	postB := battle.Post{ID: "post-b", AuthorID: "bob"}
	vote := battle.Vote{ID: "v1", VoterID: "carol", BattleID: "b1", ChosenPostID: "post-a", CreatedAt: now}

	tests := []struct {
		name      string
		build     builtStatement
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "join guards status deadline and self join",
			build: func() (string, []any, error) {
				return joinBattleQuery("b1", postB, deadline, now)
			},
			wantQuery: "UPDATE battles SET post_b_public_id = $1, author_b_id = $2, status = $3, votes_a = $4, votes_b = $5, " +
				"deadline = $6, started_at = $7 WHERE public_id = $8 AND status = $9 AND deadline > $10 AND author_a_id <> $11",
			wantArgs: []any{"post-b", "bob", "active", 0, 0, deadline, now, "b1", "waiting", now, "bob"},
		},
		{
			name: "cancel only from waiting",
			build: func() (string, []any, error) {
				return cancelBattleQuery("b1", now)
			},
			wantQuery: "UPDATE battles SET status = $1, finished_at = $2 WHERE public_id = $3 AND status = $4",
			wantArgs:  []any{"cancelled", now, "b1", "waiting"},
		},
		{
			name: "finish decides winner in the same write",
			build: func() (string, []any, error) {
				return finishBattleQuery("b1", now)
			},
			wantQuery: "UPDATE battles SET status = $1, finished_at = $2, winner_post_public_id = " +
				"CASE WHEN votes_a > votes_b THEN post_a_public_id WHEN votes_b > votes_a THEN post_b_public_id ELSE NULL END " +
				"WHERE public_id = $3 AND status = $4",
			wantArgs: []any{"finished", now, "b1", "active"},
		},
		{
			name: "vote increment guarded by status deadline and membership",
			build: func() (string, []any, error) {
				return incrementVoteQuery(vote)
			},
			wantQuery: "UPDATE battles SET votes_a = votes_a + CASE WHEN post_a_public_id = $1 THEN 1 ELSE 0 END, " +
				"votes_b = votes_b + CASE WHEN post_b_public_id = $2 THEN 1 ELSE 0 END " +
				"WHERE public_id = $3 AND status = $4 AND deadline > $5 AND (post_a_public_id = $6 OR post_b_public_id = $7)",
			wantArgs: []any{"post-a", "post-a", "b1", "active", now, "post-a", "post-a"},
		},
		{
			name: "claim open entry has no conflict clause",
			build: func() (string, []any, error) {
				return claimOpenEntryQuery("alice", "b1", now)
			},
			wantQuery: "INSERT INTO battle_open_entries (author_id, battle_public_id, created_at) VALUES ($1, $2, $3)",
			wantArgs:  []any{"alice", "b1", now},
		},
		{
			name: "release open entries of a closed battle",
			build: func() (string, []any, error) {
				return releaseOpenEntriesQuery("b1")
			},
			wantQuery: "DELETE FROM battle_open_entries WHERE battle_public_id = $1",
			wantArgs:  []any{"b1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertStatement(t, tt.build, tt.wantQuery, tt.wantArgs)
		})
	}
}

func TestStatsAndScoreStatements(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	next := battlestats.Stats{UserID: "alice", TotalBattles: 4, Wins: 3, Losses: 1, CurrentStreak: 2, BestStreak: 3}

	tests := []struct {
		name      string
		build     builtStatement
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "lock stats row",
			build: func() (string, []any, error) {
				return lockBattleStatsQuery("alice")
			},
			wantQuery: "SELECT user_id, total_battles, wins, losses, draws, current_streak, best_streak, total_votes_cast, " +
				"correct_votes, updated_at FROM battle_user_stats WHERE user_id = $1 FOR UPDATE",
			wantArgs: []any{"alice"},
		},
		{
			name: "record outcome writes streak columns",
			build: func() (string, []any, error) {
				return recordOutcomeQuery(next, now)
			},
			wantQuery: "UPDATE battle_user_stats SET total_battles = $1, wins = $2, losses = $3, draws = $4, " +
				"current_streak = $5, best_streak = $6, updated_at = $7 WHERE user_id = $8",
			wantArgs: []any{4, 3, 1, 0, 2, 3, now, "alice"},
		},
		{
			name: "votes cast upsert accumulates",
			build: func() (string, []any, error) {
				return incrementVotesCastQuery("carol", now)
			},
			wantQuery: "INSERT INTO battle_user_stats (user_id, total_votes_cast, updated_at) VALUES ($1, $2, $3) " +
				"ON CONFLICT (user_id) DO UPDATE SET total_votes_cast = battle_user_stats.total_votes_cast + EXCLUDED.total_votes_cast, " +
				"updated_at = EXCLUDED.updated_at",
			wantArgs: []any{"carol", 1, now},
		},
		{
			name: "correct votes upsert dedupes voters",
			build: func() (string, []any, error) {
				return incrementCorrectVotesQuery([]string{"carol", "dave", "carol"}, now)
			},
			wantQuery: "INSERT INTO battle_user_stats (user_id, correct_votes, updated_at) VALUES ($1, $2, $3), ($4, $5, $6) " +
				"ON CONFLICT (user_id) DO UPDATE SET correct_votes = battle_user_stats.correct_votes + EXCLUDED.correct_votes, " +
				"updated_at = EXCLUDED.updated_at",
			wantArgs: []any{"carol", 1, now, "dave", 1, now},
		},
		{
			name: "add points keeps level and returns the row",
			build: func() (string, []any, error) {
				return addPointsQuery("alice", int64(50), now)
			},
			wantQuery: "INSERT INTO user_scores (user_id, cumulative_points, level, daily_points, monthly_points, updated_at) " +
				"VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (user_id) DO UPDATE SET " +
				"cumulative_points = user_scores.cumulative_points + EXCLUDED.cumulative_points, " +
				"daily_points = user_scores.daily_points + EXCLUDED.daily_points, " +
				"monthly_points = user_scores.monthly_points + EXCLUDED.monthly_points, " +
				"updated_at = EXCLUDED.updated_at " +
				"RETURNING user_id, cumulative_points, level, daily_points, monthly_points, updated_at",
			wantArgs: []any{"alice", int64(50), 1, int64(50), int64(50), now},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertStatement(t, tt.build, tt.wantQuery, tt.wantArgs)
		})
	}
}

func TestVoteRejection(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	vote := battle.Vote{ChosenPostID: "elsewhere", CreatedAt: now}
	active := battle.Battle{Status: battle.StatusActive, Deadline: now.Add(time.Hour)}
	expired := battle.Battle{Status: battle.StatusActive, Deadline: now}
	finished := battle.Battle{Status: battle.StatusFinished, Deadline: now.Add(time.Hour)}

	tests := []struct {
		name    string
		current battle.Battle
		exists  bool
		want    error
	}{
		{name: "missing battle", want: battle.ErrBattleNotActive},
		{name: "finished battle", current: finished, exists: true, want: battle.ErrBattleNotActive},
		{name: "deadline passed", current: expired, exists: true, want: battle.ErrBattleNotActive},
		{name: "post not in battle", current: active, exists: true, want: battle.ErrInvalidChoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := voteRejection(tt.current, tt.exists, vote); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func assertStatement(t *testing.T, build builtStatement, wantQuery string, wantArgs []any) {
	t.Helper()

	query, args, err := build()
	if err != nil {
		t.Fatalf("build statement: %v", err)
	}
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("unexpected args:\nwant: %#v\ngot:  %#v", wantArgs, args)
	}
}
