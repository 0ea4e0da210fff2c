package model

import (
	"errors"
	"time"
)

// Follow is a directed edge "follower follows followee". A single row carries
// both sides of the relationship, so the followers and following views of the
// two users can never disagree.
type Follow struct {
	FollowerID int64     `db:"follower_id" json:"followerId"`
	FolloweeID int64     `db:"followee_id" json:"followeeId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// FollowResult reports which state a follow toggle landed on.
type FollowResult struct {
	Followed bool   `json:"followed"`
	Msg      string `json:"msg"`
}

// ErrCannotFollowSelf is returned when a user tries to follow themselves.
var ErrCannotFollowSelf = errors.New("you cannot follow yourself")
