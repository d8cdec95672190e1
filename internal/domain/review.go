package domain

import "time"

type Review struct {
	ID           int64
	ProductID    int64
	UserID       *string
	ReviewerName string
	Rating       int
	Comment      string
	ImageURL     *string
	CreatedAt    time.Time
}
