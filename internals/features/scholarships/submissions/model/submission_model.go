package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	StatusMenunggu               SubmissionStatus = "MENUNGGU"
	StatusTidakLolosAdministrasi SubmissionStatus = "TIDAK_LOLOS_ADMINISTRASI"
	StatusLulusAdministrasi      SubmissionStatus = "LULUS_ADMINISTRASI"
	StatusTidakLulusTahapAkhir   SubmissionStatus = "TIDAK_LULUS_TAHAP_AKHIR"
	StatusLulusTahapAkhir        SubmissionStatus = "LULUS_TAHAP_AKHIR"
)

var AllStatuses = []SubmissionStatus{
	StatusMenunggu,
	StatusTidakLolosAdministrasi,
	StatusLulusAdministrasi,
	StatusTidakLulusTahapAkhir,
	StatusLulusTahapAkhir,
}

func (s SubmissionStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type FormSubmissionModel struct {
	SubmissionID string    `gorm:"primaryKey;size:16;column:submission_id" json:"submission_id"`
	FormID       string    `gorm:"size:16;not null;index;column:form_id" json:"form_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`

	// key "<section>.fields.<order>" → nilai atau ref file
	Data datatypes.JSONMap `gorm:"column:data" json:"data"`
	// key yang sama → field_id saat submit, supaya jawaban lama tetap bisa dilacak
	FieldRefs datatypes.JSONMap `gorm:"column:field_refs" json:"field_refs"`
	// key → ref file unggahan pendaftar (dihapus dari storage saat form dihapus)
	Files datatypes.JSONMap `gorm:"column:files" json:"files,omitempty"`

	Status      SubmissionStatus `gorm:"size:40;not null;default:'MENUNGGU';column:status" json:"status"`
	SubmittedAt time.Time        `gorm:"not null;column:submitted_at" json:"submitted_at"`

	SubmissionCreatedAt time.Time `gorm:"autoCreateTime;column:submission_created_at" json:"submission_created_at"`
	SubmissionUpdatedAt time.Time `gorm:"autoUpdateTime;column:submission_updated_at" json:"submission_updated_at"`
}

func (FormSubmissionModel) TableName() string { return "form_submissions" }
