package dto

import (
	"strings"
	"time"

	"kemahasiswaan_backend/internals/features/scholarships/scholarships/model"
)

const dateLayout = "2006-01-02"

/* =========================================================
   Create / Update
========================================================= */

type CreateScholarshipRequest struct {
	ScholarshipName        string  `json:"scholarship_name" form:"scholarship_name" validate:"required,max=150"`
	ScholarshipDescription *string `json:"scholarship_description" form:"scholarship_description"`
	ScholarshipStartDate   string  `json:"scholarship_start_date" form:"scholarship_start_date" validate:"required,datetime=2006-01-02"`
	ScholarshipEndDate     *string `json:"scholarship_end_date" form:"scholarship_end_date" validate:"omitempty,datetime=2006-01-02"`
	ScholarshipIsActive    *bool   `json:"scholarship_is_active" form:"scholarship_is_active"`
}

func (r *CreateScholarshipRequest) Normalize() {
	r.ScholarshipName = strings.TrimSpace(r.ScholarshipName)
	r.ScholarshipDescription = trimPtr(r.ScholarshipDescription)
	r.ScholarshipStartDate = strings.TrimSpace(r.ScholarshipStartDate)
	r.ScholarshipEndDate = trimPtr(r.ScholarshipEndDate)
}

// Dates: parse tanggal; dipanggil setelah validasi format lolos.
func (r *CreateScholarshipRequest) Dates() (time.Time, *time.Time) {
	start, _ := time.Parse(dateLayout, r.ScholarshipStartDate)
	var end *time.Time
	if r.ScholarshipEndDate != nil {
		if t, err := time.Parse(dateLayout, *r.ScholarshipEndDate); err == nil {
			end = &t
		}
	}
	return start, end
}

func (r *CreateScholarshipRequest) ToModel() model.ScholarshipModel {
	start, end := r.Dates()
	active := true
	if r.ScholarshipIsActive != nil {
		active = *r.ScholarshipIsActive
	}
	return model.ScholarshipModel{
		ScholarshipName:        r.ScholarshipName,
		ScholarshipDescription: r.ScholarshipDescription,
		ScholarshipStartDate:   start,
		ScholarshipEndDate:     end,
		ScholarshipIsActive:    active,
	}
}

// UpdateScholarshipRequest: PUT penuh (poster opsional lewat multipart).
type UpdateScholarshipRequest struct {
	CreateScholarshipRequest
	RemovePoster bool `json:"remove_poster" form:"remove_poster"`
}

/* =========================================================
   List (query params)
========================================================= */

type ListScholarshipQuery struct {
	Q        string `query:"q"`
	IsActive *bool  `query:"is_active"`
}

/* =========================================================
   Response
========================================================= */

type ScholarshipResponse struct {
	ScholarshipID          string    `json:"scholarship_id"`
	ScholarshipName        string    `json:"scholarship_name"`
	ScholarshipDescription *string   `json:"scholarship_description,omitempty"`
	ScholarshipPoster      *string   `json:"scholarship_poster,omitempty"`
	ScholarshipStartDate   string    `json:"scholarship_start_date"`
	ScholarshipEndDate     *string   `json:"scholarship_end_date,omitempty"`
	ScholarshipIsActive    bool      `json:"scholarship_is_active"`
	ScholarshipCreatedAt   time.Time `json:"scholarship_created_at"`
	ScholarshipUpdatedAt   time.Time `json:"scholarship_updated_at"`
}

func FromModel(m model.ScholarshipModel) ScholarshipResponse {
	var end *string
	if m.ScholarshipEndDate != nil {
		s := m.ScholarshipEndDate.Format(dateLayout)
		end = &s
	}
	return ScholarshipResponse{
		ScholarshipID:          m.ScholarshipID,
		ScholarshipName:        m.ScholarshipName,
		ScholarshipDescription: m.ScholarshipDescription,
		ScholarshipPoster:      m.ScholarshipPoster,
		ScholarshipStartDate:   m.ScholarshipStartDate.Format(dateLayout),
		ScholarshipEndDate:     end,
		ScholarshipIsActive:    m.ScholarshipIsActive,
		ScholarshipCreatedAt:   m.ScholarshipCreatedAt,
		ScholarshipUpdatedAt:   m.ScholarshipUpdatedAt,
	}
}

func FromModels(rows []model.ScholarshipModel) []ScholarshipResponse {
	out := make([]ScholarshipResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
