package models

import "time"

type User struct {
	ID         int       `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Password   string    `json:"password,omitempty"`
	Bio        string    `json:"bio"`
	ProfilePic string    `json:"profile_pic"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserSummary is the public projection attached to posts, comments,
// follower listings and search results. No credential fields.
type UserSummary struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
	Bio        string `json:"bio,omitempty"`
}

type FollowerInfo struct {
	ID         int       `json:"id"`
	Username   string    `json:"username"`
	ProfilePic string    `json:"profile_pic"`
	Bio        string    `json:"bio"`
	FollowedAt time.Time `json:"followed_at"`
}
