package model

import "time"

// FormSettingModel: acceptance window per form (1:1).
type FormSettingModel struct {
	SettingID          string     `gorm:"primaryKey;size:16;column:setting_id" json:"setting_id"`
	FormID             string     `gorm:"size:16;not null;uniqueIndex;column:form_id" json:"form_id"`
	AcceptResponses    bool       `gorm:"not null;column:accept_responses" json:"accept_responses"`
	SubmissionDeadline *time.Time `gorm:"column:submission_deadline" json:"submission_deadline,omitempty"`
	MaxSubmissions     *int       `gorm:"column:max_submissions" json:"max_submissions,omitempty"`
	NotifyEmail        *string    `gorm:"size:150;column:notify_email" json:"notify_email,omitempty"`

	SettingCreatedAt time.Time `gorm:"autoCreateTime;column:setting_created_at" json:"setting_created_at"`
	SettingUpdatedAt time.Time `gorm:"autoUpdateTime;column:setting_updated_at" json:"setting_updated_at"`
}

func (FormSettingModel) TableName() string { return "form_settings" }

// Closed: alasan penolakan submit saat ini ("" = masih menerima).
func (s FormSettingModel) Closed(now time.Time, submitted int64) string {
	switch {
	case !s.AcceptResponses:
		return "closed"
	case s.SubmissionDeadline != nil && now.After(*s.SubmissionDeadline):
		return "deadline"
	case s.MaxSubmissions != nil && submitted >= int64(*s.MaxSubmissions):
		return "cap"
	}
	return ""
}
