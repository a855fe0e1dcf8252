package dto

import (
	"time"

	"github.com/google/uuid"

	"kemahasiswaan_backend/internals/features/scholarships/submissions/model"
	"kemahasiswaan_backend/internals/helpers/storage"
)

// SubmitRequest: key data boleh "<section>.fields.<order>" atau field_id.
type SubmitRequest struct {
	Data map[string]any `json:"data"`

	// file pendaftar dari multipart data[<key>]
	Files map[string]*storage.Upload `json:"-"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ListSubmissionQuery struct {
	Status string `query:"status"`
}

type SubmissionResponse struct {
	SubmissionID string         `json:"submission_id"`
	FormID       string         `json:"form_id"`
	UserID       uuid.UUID      `json:"user_id"`
	Data         map[string]any `json:"data"`
	FieldRefs    map[string]any `json:"field_refs,omitempty"`
	Status       string         `json:"status"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func FromModel(m model.FormSubmissionModel) SubmissionResponse {
	data := map[string]any(m.Data)
	if data == nil {
		data = map[string]any{}
	}
	return SubmissionResponse{
		SubmissionID: m.SubmissionID,
		FormID:       m.FormID,
		UserID:       m.UserID,
		Data:         data,
		FieldRefs:    map[string]any(m.FieldRefs),
		Status:       string(m.Status),
		SubmittedAt:  m.SubmittedAt,
		UpdatedAt:    m.SubmissionUpdatedAt,
	}
}

func FromModels(rows []model.FormSubmissionModel) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
