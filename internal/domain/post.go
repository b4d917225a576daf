package domain

import "time"

type Post struct {
	PostID    string    `json:"id" dynamodbav:"post_id"`
	Title     string    `json:"title" dynamodbav:"title"`
	Content   string    `json:"content" dynamodbav:"content"`
	MediaURL  *string   `json:"media_url" dynamodbav:"media_url"`
	IsVideo   bool      `json:"is_video" dynamodbav:"is_video"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}
