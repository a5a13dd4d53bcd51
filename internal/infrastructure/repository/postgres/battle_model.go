package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/battle-arena/internal/domain/battle"
)

type postInsertModel struct {
	PublicID  string    `db:"public_id"`
	AuthorID  string    `db:"author_id"`
	Content   string    `db:"content"`
	ImageRef  string    `db:"image_ref"`
	CreatedAt time.Time `db:"created_at"`
}

type battleInsertModel struct {
	PublicID  string    `db:"public_id"`
	PostAID   string    `db:"post_a_public_id"`
	AuthorAID string    `db:"author_a_id"`
	Status    string    `db:"status"`
	VotesA    int       `db:"votes_a"`
	VotesB    int       `db:"votes_b"`
	CreatedAt time.Time `db:"created_at"`
	Deadline  time.Time `db:"deadline"`
}

// openEntryModel claims the single open entry an author may hold.
type openEntryModel struct {
	AuthorID       string    `db:"author_id"`
	BattlePublicID string    `db:"battle_public_id"`
	CreatedAt      time.Time `db:"created_at"`
}

// battleTableModel is one row of battleSelectColumns: the battle joined with both posts.
type battleTableModel struct {
	PublicID     string         `db:"public_id"`
	Status       string         `db:"status"`
	VotesA       int            `db:"votes_a"`
	VotesB       int            `db:"votes_b"`
	WinnerPostID sql.NullString `db:"winner_post_public_id"`
	CreatedAt    time.Time      `db:"created_at"`
	Deadline     time.Time      `db:"deadline"`
	StartedAt    sql.NullTime   `db:"started_at"`
	FinishedAt   sql.NullTime   `db:"finished_at"`

	PostAID        string    `db:"post_a_public_id"`
	PostAAuthorID  string    `db:"post_a_author_id"`
	PostAContent   string    `db:"post_a_content"`
	PostAImageRef  string    `db:"post_a_image_ref"`
	PostACreatedAt time.Time `db:"post_a_created_at"`

	PostBID        sql.NullString `db:"post_b_public_id"`
	PostBAuthorID  sql.NullString `db:"post_b_author_id"`
	PostBContent   sql.NullString `db:"post_b_content"`
	PostBImageRef  sql.NullString `db:"post_b_image_ref"`
	PostBCreatedAt sql.NullTime   `db:"post_b_created_at"`
}

// voteTableModel doubles as the insert model; votes have no generated columns.
type voteTableModel struct {
	PublicID       string    `db:"public_id"`
	VoterID        string    `db:"voter_id"`
	BattlePublicID string    `db:"battle_public_id"`
	ChosenPostID   string    `db:"chosen_post_public_id"`
	CreatedAt      time.Time `db:"created_at"`
}

// Post A is left-joined because a withdrawn battle keeps its row after the post is deleted.
const battleJoinedTable = "battles b " +
	"LEFT JOIN battle_posts pa ON pa.public_id = b.post_a_public_id " +
	"LEFT JOIN battle_posts pb ON pb.public_id = b.post_b_public_id"

var battleSelectColumns = []string{
	"b.public_id",
	"b.status",
	"b.votes_a",
	"b.votes_b",
	"b.winner_post_public_id",
	"b.created_at",
	"b.deadline",
	"b.started_at",
	"b.finished_at",
	"b.post_a_public_id",
	"b.author_a_id AS post_a_author_id",
	"COALESCE(pa.content, '') AS post_a_content",
	"COALESCE(pa.image_ref, '') AS post_a_image_ref",
	"COALESCE(pa.created_at, b.created_at) AS post_a_created_at",
	"pb.public_id AS post_b_public_id",
	"pb.author_id AS post_b_author_id",
	"pb.content AS post_b_content",
	"pb.image_ref AS post_b_image_ref",
	"pb.created_at AS post_b_created_at",
}

func battleFromRow(row battleTableModel) battle.Battle {
	out := battle.Battle{
		ID:     row.PublicID,
		Status: battle.Status(row.Status),
		PostA: battle.Post{
			ID:        row.PostAID,
			AuthorID:  row.PostAAuthorID,
			Content:   row.PostAContent,
			ImageRef:  row.PostAImageRef,
			CreatedAt: row.PostACreatedAt,
		},
		VotesA:       row.VotesA,
		VotesB:       row.VotesB,
		WinnerPostID: row.WinnerPostID.String,
		CreatedAt:    row.CreatedAt,
		Deadline:     row.Deadline,
		StartedAt:    nullTimePtr(row.StartedAt),
		FinishedAt:   nullTimePtr(row.FinishedAt),
	}
	if row.PostBID.Valid {
		out.PostB = &battle.Post{
			ID:        row.PostBID.String,
			AuthorID:  row.PostBAuthorID.String,
			Content:   row.PostBContent.String,
			ImageRef:  row.PostBImageRef.String,
			CreatedAt: row.PostBCreatedAt.Time,
		}
	}
	return out
}

func voteFromRow(row voteTableModel) battle.Vote {
	return battle.Vote{
		ID:           row.PublicID,
		VoterID:      row.VoterID,
		BattleID:     row.BattlePublicID,
		ChosenPostID: row.ChosenPostID,
		CreatedAt:    row.CreatedAt,
	}
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
