package model

import (
	"time"

	"github.com/google/uuid"
)

type ScholarshipModel struct {
	ScholarshipID          string  `gorm:"primaryKey;size:16;column:scholarship_id" json:"scholarship_id"`
	ScholarshipName        string  `gorm:"size:150;not null;column:scholarship_name" json:"scholarship_name"`
	ScholarshipDescription *string `gorm:"type:text;column:scholarship_description" json:"scholarship_description,omitempty"`
	ScholarshipPoster      *string `gorm:"type:text;column:scholarship_poster" json:"scholarship_poster,omitempty"`

	ScholarshipStartDate time.Time  `gorm:"not null;column:scholarship_start_date" json:"scholarship_start_date"`
	ScholarshipEndDate   *time.Time `gorm:"column:scholarship_end_date" json:"scholarship_end_date,omitempty"`
	ScholarshipIsActive  bool       `gorm:"not null;column:scholarship_is_active" json:"scholarship_is_active"`

	ScholarshipCreatedBy *uuid.UUID `gorm:"type:uuid;column:scholarship_created_by" json:"scholarship_created_by,omitempty"`
	ScholarshipUpdatedBy *uuid.UUID `gorm:"type:uuid;column:scholarship_updated_by" json:"scholarship_updated_by,omitempty"`

	ScholarshipCreatedAt time.Time `gorm:"autoCreateTime;column:scholarship_created_at" json:"scholarship_created_at"`
	ScholarshipUpdatedAt time.Time `gorm:"autoUpdateTime;column:scholarship_updated_at" json:"scholarship_updated_at"`
}

func (ScholarshipModel) TableName() string { return "scholarships" }
