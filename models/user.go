package models

import (
	"math"
	"time"
)

// Rating is the running mean of the scores a user has received.
type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

// Fold returns the rating after adding score, rounded to one decimal place.
func (r Rating) Fold(score int) Rating {
	count := r.Count + 1
	avg := (r.Average*float64(r.Count) + float64(score)) / float64(count)
	return Rating{Average: math.Round(avg*10) / 10, Count: count}
}

// User is a participant who holds credits and may act as student or mentor.
type User struct {
	ID        string    `bson:"id" json:"id"`
	Username  string    `bson:"username" json:"username"`
	Credits   int64     `bson:"credits" json:"credits"`
	Rating    Rating    `bson:"rating" json:"rating"`
	IsActive  bool      `bson:"isActive" json:"isActive"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) Clone() *User {
	c := *u
	return &c
}
