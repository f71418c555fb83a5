package models

import "time"

type UserProgress struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_progress_user_exercise" json:"userId"`
	ExerciseID uint       `gorm:"not null;uniqueIndex:idx_progress_user_exercise;index" json:"exerciseId"`
	VideoURL   *string    `gorm:"column:video_url" json:"videoUrl"`
	Completed  bool       `gorm:"not null;default:false" json:"completed"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	User       *User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Exercise   *Exercise  `gorm:"constraint:OnDelete:CASCADE" json:"exercise,omitempty"`
	Feedback   []Feedback `gorm:"foreignKey:ProgressID;constraint:OnDelete:CASCADE" json:"feedback"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

type Feedback struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProgressID uint      `gorm:"index;not null" json:"progressId"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Rating     int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Feedback) TableName() string {
	return "feedback"
}

// ExerciseStatus is one dashboard row: an exercise with the caller's
// progress on it and whether it can be attempted.
type ExerciseStatus struct {
	Exercise Exercise      `json:"exercise"`
	Progress *UserProgress `json:"progress"`
	Unlocked bool          `json:"unlocked"`
}

type ProgressSummary struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}
