package models

import "time"

type Post struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Image     string    `json:"image"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"created_at"`
}

type PostWithUser struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	Image      string    `json:"image"`
	Caption    string    `json:"caption"`
	CreatedAt  time.Time `json:"created_at"`
	Username   string    `json:"username"`
	ProfilePic string    `json:"profile_pic"`
}

// PostDetail is the single-post response: owner projection plus embedded
// comments with their author projections.
type PostDetail struct {
	PostWithUser
	LikeCount int               `json:"like_count"`
	Comments  []CommentWithUser `json:"comments"`
}
