package models

import "time"

type Exercise struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Title                 string    `gorm:"not null" json:"title"`
	Description           string    `gorm:"type:text;not null" json:"description"`
	DemoVideoURL          string    `gorm:"column:demo_video_url;not null" json:"demoVideoUrl"`
	ProfessionalAnswerURL string    `gorm:"column:professional_answer_url;not null" json:"professionalAnswerUrl"`
	PDFURL                *string   `gorm:"column:pdf_url" json:"pdfUrl"`
	Order                 int       `gorm:"column:exercise_order;uniqueIndex;not null" json:"order"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}
