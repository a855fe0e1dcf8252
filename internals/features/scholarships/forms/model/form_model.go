package model

import (
	"time"

	"github.com/google/uuid"
)

type ScholarshipFormModel struct {
	FormID          string  `gorm:"primaryKey;size:16;column:form_id" json:"form_id"`
	ScholarshipID   string  `gorm:"size:16;not null;index;column:scholarship_id" json:"scholarship_id"`
	FormName        string  `gorm:"size:100;not null;column:form_name" json:"form_name"`
	FormDescription *string `gorm:"type:text;column:form_description" json:"form_description,omitempty"`
	FormIsActive    bool    `gorm:"not null;column:form_is_active" json:"form_is_active"`

	FormCreatedBy *uuid.UUID `gorm:"type:uuid;column:form_created_by" json:"form_created_by,omitempty"`
	FormUpdatedBy *uuid.UUID `gorm:"type:uuid;column:form_updated_by" json:"form_updated_by,omitempty"`

	FormCreatedAt time.Time `gorm:"autoCreateTime;column:form_created_at" json:"form_created_at"`
	FormUpdatedAt time.Time `gorm:"autoUpdateTime;column:form_updated_at" json:"form_updated_at"`
}

func (ScholarshipFormModel) TableName() string { return "scholarship_forms" }
