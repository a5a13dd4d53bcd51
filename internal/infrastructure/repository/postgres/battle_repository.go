package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/battle-arena/internal/domain/battle"
	qb "github.com/riskibarqy/battle-arena/internal/platform/querybuilder"
)

type BattleRepository struct {
	db *sqlx.DB
}

func NewBattleRepository(db *sqlx.DB) *BattleRepository {
	return &BattleRepository{db: db}
}

func battleBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select(battleSelectColumns...).From(battleJoinedTable)
}

func openStatuses() []any {
	return []any{string(battle.StatusWaiting), string(battle.StatusActive)}
}

func (r *BattleRepository) DeletePost(ctx context.Context, postID string) error {
	query, args, err := qb.DeleteFrom("battle_posts").
		Where(qb.Eq("public_id", postID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete battle post query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete battle post: %w", err)
	}

	return nil
}

// Create stores post A, the battle and the author's open entry in one transaction.
func (r *BattleRepository) Create(ctx context.Context, item battle.Battle) error {
	return inTx(ctx, r.db, "create battle", func(tx *sqlx.Tx) error {
		if err := insertPost(ctx, tx, item.PostA); err != nil {
			return err
		}

		query, args, err := qb.InsertModel("battles", qb.Conflict{}, battleInsertModel{
			PublicID:  item.ID,
			PostAID:   item.PostA.ID,
			AuthorAID: item.PostA.AuthorID,
			Status:    string(item.Status),
			VotesA:    item.VotesA,
			VotesB:    item.VotesB,
			CreatedAt: item.CreatedAt,
			Deadline:  item.Deadline,
		})
		if err != nil {
			return fmt.Errorf("build create battle query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("create battle: %w", err)
		}

		if !item.Status.IsOpen() {
			return nil
		}
		return claimOpenEntry(ctx, tx, item.PostA.AuthorID, item.ID, item.CreatedAt)
	})
}

func insertPost(ctx context.Context, tx *sqlx.Tx, post battle.Post) error {
	query, args, err := qb.InsertModel("battle_posts", qb.Conflict{}, postInsertModel{
		PublicID:  post.ID,
		AuthorID:  post.AuthorID,
		Content:   post.Content,
		ImageRef:  post.ImageRef,
		CreatedAt: post.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("build create battle post query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create battle post: %w", err)
	}
	return nil
}

func claimOpenEntryQuery(authorID, battleID string, now time.Time) (string, []any, error) {
	return qb.InsertModel("battle_open_entries", qb.Conflict{}, openEntryModel{
		AuthorID:       authorID,
		BattlePublicID: battleID,
		CreatedAt:      now,
	})
}

// claimOpenEntry fails with ErrDuplicateEntry when the author already holds an open battle.
func claimOpenEntry(ctx context.Context, tx *sqlx.Tx, authorID, battleID string, now time.Time) error {
	query, args, err := claimOpenEntryQuery(authorID, battleID, now)
	if err != nil {
		return fmt.Errorf("build claim open entry query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: author_id=%s", battle.ErrDuplicateEntry, authorID)
		}
		return fmt.Errorf("claim open entry: %w", err)
	}
	return nil
}

func releaseOpenEntriesQuery(battleID string) (string, []any, error) {
	return qb.DeleteFrom("battle_open_entries").
		Where(qb.Eq("battle_public_id", battleID)).
		ToSQL()
}

func (r *BattleRepository) GetByID(ctx context.Context, battleID string) (battle.Battle, bool, error) {
	return r.getByID(ctx, r.db, battleID)
}

func (r *BattleRepository) getByID(ctx context.Context, q sqlx.QueryerContext, battleID string) (battle.Battle, bool, error) {
	query, args, err := battleBaseSelectBuilder().
		Where(qb.Eq("b.public_id", battleID)).
		ToSQL()
	if err != nil {
		return battle.Battle{}, false, fmt.Errorf("build get battle query: %w", err)
	}

	var row battleTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return battle.Battle{}, false, nil
		}
		return battle.Battle{}, false, fmt.Errorf("get battle: %w", err)
	}

	return battleFromRow(row), true, nil
}

func (r *BattleRepository) FindJoinable(ctx context.Context, excludeAuthorID string, now time.Time) (battle.Battle, bool, error) {
	query, args, err := battleBaseSelectBuilder().
		Where(
			qb.Eq("b.status", string(battle.StatusWaiting)),
			qb.Gt("b.deadline", now),
			qb.NotEq("b.author_a_id", excludeAuthorID),
		).
		OrderBy("b.created_at ASC", "b.public_id ASC").
		Limit(1).
		ToSQL()
	if err != nil {
		return battle.Battle{}, false, fmt.Errorf("build find joinable battle query: %w", err)
	}

	var row battleTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return battle.Battle{}, false, nil
		}
		return battle.Battle{}, false, fmt.Errorf("find joinable battle: %w", err)
	}

	return battleFromRow(row), true, nil
}

func (r *BattleRepository) FindOpenByAuthor(ctx context.Context, authorID string) (battle.Battle, bool, error) {
	query, args, err := battleBaseSelectBuilder().
		Where(
			qb.In("b.status", openStatuses()),
			qb.Any(
				qb.Eq("b.author_a_id", authorID),
				qb.Eq("b.author_b_id", authorID),
			),
		).
		OrderBy("b.created_at ASC", "b.public_id ASC").
		Limit(1).
		ToSQL()
	if err != nil {
		return battle.Battle{}, false, fmt.Errorf("build find open battle query: %w", err)
	}

	var row battleTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return battle.Battle{}, false, nil
		}
		return battle.Battle{}, false, fmt.Errorf("find open battle: %w", err)
	}

	return battleFromRow(row), true, nil
}

var errJoinLost = errors.New("join lost")

// Join stores post B, flips the battle to active and claims the joiner's open
// entry in one transaction. A lost race rolls the post back.
func (r *BattleRepository) Join(ctx context.Context, battleID string, postB battle.Post, votingDeadline, now time.Time) (bool, error) {
	err := inTx(ctx, r.db, "join battle", func(tx *sqlx.Tx) error {
		if err := insertPost(ctx, tx, postB); err != nil {
			return err
		}

		query, args, err := joinBattleQuery(battleID, postB, votingDeadline, now)
		if err != nil {
			return fmt.Errorf("build join battle query: %w", err)
		}
		joined, err := execTransition(ctx, tx, "join battle", query, args)
		if err != nil {
			return err
		}
		if !joined {
			return errJoinLost
		}

		return claimOpenEntry(ctx, tx, postB.AuthorID, battleID, now)
	})
	if errors.Is(err, errJoinLost) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func joinBattleQuery(battleID string, postB battle.Post, votingDeadline, now time.Time) (string, []any, error) {
	return qb.Update("battles").
		Set("post_b_public_id", postB.ID).
		Set("author_b_id", postB.AuthorID).
		Set("status", string(battle.StatusActive)).
		Set("votes_a", 0).
		Set("votes_b", 0).
		Set("deadline", votingDeadline).
		Set("started_at", now).
		Where(
			qb.Eq("public_id", battleID),
			qb.Eq("status", string(battle.StatusWaiting)),
			qb.Gt("deadline", now),
			qb.NotEq("author_a_id", postB.AuthorID),
		).
		ToSQL()
}

func (r *BattleRepository) Cancel(ctx context.Context, battleID string, now time.Time) (bool, error) {
	query, args, err := cancelBattleQuery(battleID, now)
	if err != nil {
		return false, fmt.Errorf("build cancel battle query: %w", err)
	}

	return r.closeBattle(ctx, "cancel battle", battleID, query, args)
}

func cancelBattleQuery(battleID string, now time.Time) (string, []any, error) {
	return qb.Update("battles").
		Set("status", string(battle.StatusCancelled)).
		Set("finished_at", now).
		Where(
			qb.Eq("public_id", battleID),
			qb.Eq("status", string(battle.StatusWaiting)),
		).
		ToSQL()
}

// Finish decides the winner from the stored counters inside the same UPDATE,
// so a vote committed just before the transition is always counted.
func (r *BattleRepository) Finish(ctx context.Context, battleID string, now time.Time) (battle.Battle, bool, error) {
	query, args, err := finishBattleQuery(battleID, now)
	if err != nil {
		return battle.Battle{}, false, fmt.Errorf("build finish battle query: %w", err)
	}

	finished, err := r.closeBattle(ctx, "finish battle", battleID, query, args)
	if err != nil || !finished {
		return battle.Battle{}, false, err
	}

	item, exists, err := r.GetByID(ctx, battleID)
	if err != nil {
		return battle.Battle{}, false, err
	}
	if !exists {
		return battle.Battle{}, false, fmt.Errorf("finish battle: battle %s disappeared", battleID)
	}
	return item, true, nil
}

func finishBattleQuery(battleID string, now time.Time) (string, []any, error) {
	return qb.Update("battles").
		Set("status", string(battle.StatusFinished)).
		Set("finished_at", now).
		SetExpr("winner_post_public_id",
			"CASE WHEN votes_a > votes_b THEN post_a_public_id "+
				"WHEN votes_b > votes_a THEN post_b_public_id ELSE NULL END").
		Where(
			qb.Eq("public_id", battleID),
			qb.Eq("status", string(battle.StatusActive)),
		).
		ToSQL()
}

// closeBattle runs a terminal transition and, when it wins, releases the
// open entries of both authors in the same transaction.
func (r *BattleRepository) closeBattle(ctx context.Context, op, battleID, query string, args []any) (bool, error) {
	closed := false
	err := inTx(ctx, r.db, op, func(tx *sqlx.Tx) error {
		won, err := execTransition(ctx, tx, op, query, args)
		if err != nil || !won {
			return err
		}

		releaseQuery, releaseArgs, err := releaseOpenEntriesQuery(battleID)
		if err != nil {
			return fmt.Errorf("build release open entries query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, releaseQuery, releaseArgs...); err != nil {
			return fmt.Errorf("release open entries: %w", err)
		}
		closed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return closed, nil
}

func (r *BattleRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]battle.Battle, error) {
	builder := battleBaseSelectBuilder().
		Where(
			qb.In("b.status", openStatuses()),
			qb.Lte("b.deadline", now),
		).
		OrderBy("b.deadline ASC", "b.public_id ASC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	return r.list(ctx, "list expired battles", builder)
}

func (r *BattleRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]battle.Battle, error) {
	builder := battleBaseSelectBuilder().
		Where(qb.Any(
			qb.Eq("b.author_a_id", authorID),
			qb.Eq("b.author_b_id", authorID),
		)).
		OrderBy("b.created_at DESC", "b.public_id DESC").
		Offset(offset)
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	return r.list(ctx, "list battles by author", builder)
}

func (r *BattleRepository) ListActive(ctx context.Context, limit int) ([]battle.Battle, error) {
	builder := battleBaseSelectBuilder().
		Where(qb.Eq("b.status", string(battle.StatusActive))).
		OrderBy("b.created_at DESC", "b.public_id DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	return r.list(ctx, "list active battles", builder)
}

func (r *BattleRepository) list(ctx context.Context, op string, builder *qb.SelectBuilder) ([]battle.Battle, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []battleTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]battle.Battle, 0, len(rows))
	for _, row := range rows {
		out = append(out, battleFromRow(row))
	}
	return out, nil
}

// CastVote bumps the chosen counter first so the battle row is locked, then
// inserts the vote; a duplicate vote rolls the increment back.
func (r *BattleRepository) CastVote(ctx context.Context, vote battle.Vote) (battle.Battle, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return battle.Battle{}, fmt.Errorf("begin tx cast vote: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	incrementQuery, incrementArgs, err := incrementVoteQuery(vote)
	if err != nil {
		return battle.Battle{}, fmt.Errorf("build increment vote query: %w", err)
	}
	result, err := tx.ExecContext(ctx, incrementQuery, incrementArgs...)
	if err != nil {
		return battle.Battle{}, fmt.Errorf("increment vote: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return battle.Battle{}, fmt.Errorf("rows affected increment vote: %w", err)
	}
	if affected == 0 {
		return battle.Battle{}, r.rejectVote(ctx, tx, vote)
	}

	insertQuery, insertArgs, err := qb.InsertModel("battle_votes", qb.Conflict{}, voteTableModel{
		PublicID:       vote.ID,
		VoterID:        vote.VoterID,
		BattlePublicID: vote.BattleID,
		ChosenPostID:   vote.ChosenPostID,
		CreatedAt:      vote.CreatedAt,
	})
	if err != nil {
		return battle.Battle{}, fmt.Errorf("build insert vote query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		if isUniqueViolation(err) {
			return battle.Battle{}, battle.ErrAlreadyVoted
		}
		return battle.Battle{}, fmt.Errorf("insert vote: %w", err)
	}

	updated, exists, err := r.getByID(ctx, tx, vote.BattleID)
	if err != nil {
		return battle.Battle{}, err
	}
	if !exists {
		return battle.Battle{}, battle.ErrBattleNotActive
	}

	if err := tx.Commit(); err != nil {
		return battle.Battle{}, fmt.Errorf("commit cast vote tx: %w", err)
	}

	return updated, nil
}

// incrementVoteQuery bumps the chosen side only while the battle is active,
// its deadline is after the vote and the post belongs to it.
func incrementVoteQuery(vote battle.Vote) (string, []any, error) {
	return qb.Update("battles").
		SetExpr("votes_a", "votes_a + CASE WHEN post_a_public_id = ? THEN 1 ELSE 0 END", vote.ChosenPostID).
		SetExpr("votes_b", "votes_b + CASE WHEN post_b_public_id = ? THEN 1 ELSE 0 END", vote.ChosenPostID).
		Where(
			qb.Eq("public_id", vote.BattleID),
			qb.Eq("status", string(battle.StatusActive)),
			qb.Gt("deadline", vote.CreatedAt),
			qb.Any(
				qb.Eq("post_a_public_id", vote.ChosenPostID),
				qb.Eq("post_b_public_id", vote.ChosenPostID),
			),
		).
		ToSQL()
}

// rejectVote explains why the guarded increment matched no row.
func (r *BattleRepository) rejectVote(ctx context.Context, tx *sqlx.Tx, vote battle.Vote) error {
	current, exists, err := r.getByID(ctx, tx, vote.BattleID)
	if err != nil {
		return err
	}
	return voteRejection(current, exists, vote)
}

func voteRejection(current battle.Battle, exists bool, vote battle.Vote) error {
	if !exists || current.Status != battle.StatusActive || !current.Deadline.After(vote.CreatedAt) {
		return battle.ErrBattleNotActive
	}
	return battle.ErrInvalidChoice
}

func (r *BattleRepository) HasVoted(ctx context.Context, voterID, battleID string) (bool, error) {
	query, args, err := qb.Select("1").From("battle_votes").
		Where(
			qb.Eq("voter_id", voterID),
			qb.Eq("battle_public_id", battleID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build has voted query: %w", err)
	}

	var found int
	if err := r.db.GetContext(ctx, &found, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("has voted: %w", err)
	}

	return true, nil
}

func (r *BattleRepository) ListVotes(ctx context.Context, battleID string) ([]battle.Vote, error) {
	query, args, err := qb.Select("public_id", "voter_id", "battle_public_id", "chosen_post_public_id", "created_at").
		From("battle_votes").
		Where(qb.Eq("battle_public_id", battleID)).
		OrderBy("created_at ASC", "public_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list votes query: %w", err)
	}

	var rows []voteTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}

	out := make([]battle.Vote, 0, len(rows))
	for _, row := range rows {
		out = append(out, voteFromRow(row))
	}
	return out, nil
}
