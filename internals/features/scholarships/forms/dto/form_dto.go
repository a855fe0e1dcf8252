package dto

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"kemahasiswaan_backend/internals/features/scholarships/forms/model"
	"kemahasiswaan_backend/internals/helpers/storage"
)

/* =========================================================
   Create / Update (payload sama; field_id membedakan update vs insert)
========================================================= */

type FieldInput struct {
	FieldID    *string `json:"field_id,omitempty"`
	FieldName  string  `json:"field_name" validate:"required,max=150"`
	FieldType  string  `json:"field_type" validate:"required,oneof=text number date dropdown file quill"`
	IsRequired *bool   `json:"is_required" validate:"required"`
	Order      *int    `json:"order,omitempty"` // informatif saja; urutan selalu dihitung ulang
	Options    *string `json:"options,omitempty"`
	RemoveFile bool    `json:"remove_file,omitempty"`

	// lampiran admin dari multipart sections[i][fields][j][file]
	File *storage.Upload `json:"-"`
}

type SectionInput struct {
	Title  string       `json:"title" validate:"required,max=150"`
	Fields []FieldInput `json:"fields" validate:"required,min=1,dive"`
}

type FormPayload struct {
	ScholarshipID string         `json:"scholarship_id" validate:"required"`
	FormName      string         `json:"form_name" validate:"required,max=100"`
	Description   *string        `json:"description,omitempty"`
	IsActive      *bool          `json:"is_active,omitempty"` // diabaikan saat create (selalu aktif)
	Sections      []SectionInput `json:"sections" validate:"required,min=1,dive"`

	// pelanggaran dari multipart (file untuk field yang tidak ada), digabung saat validasi
	UploadErrors map[string][]string `json:"-"`
}

func (p *FormPayload) AddUploadError(path, msg string) {
	if p.UploadErrors == nil {
		p.UploadErrors = map[string][]string{}
	}
	p.UploadErrors[path] = append(p.UploadErrors[path], msg)
}

type (
	CreateFormRequest = FormPayload
	UpdateFormRequest = FormPayload
)

func (p *FormPayload) Normalize() {
	p.ScholarshipID = strings.TrimSpace(p.ScholarshipID)
	p.FormName = strings.TrimSpace(p.FormName)
	p.Description = trimPtr(p.Description)
	for i := range p.Sections {
		s := &p.Sections[i]
		s.Title = strings.TrimSpace(s.Title)
		for j := range s.Fields {
			f := &s.Fields[j]
			f.FieldID = trimPtr(f.FieldID)
			f.FieldName = strings.TrimSpace(f.FieldName)
			f.FieldType = strings.ToLower(strings.TrimSpace(f.FieldType))
			f.Options = trimPtr(f.Options)
		}
	}
}

// FieldCount: jumlah field di seluruh section.
func (p *FormPayload) FieldCount() int {
	n := 0
	for _, s := range p.Sections {
		n += len(s.Fields)
	}
	return n
}

/* =========================================================
   Settings (PATCH, tri-state)
========================================================= */

type UpdateSettingsRequest struct {
	AcceptResponses    PatchField[bool]      `json:"accept_responses"`
	SubmissionDeadline PatchField[time.Time] `json:"submission_deadline"`
	MaxSubmissions     PatchField[int]       `json:"max_submissions"`
	NotifyEmail        PatchField[string]    `json:"notify_email"`
}

/* =========================================================
   List (query params)
========================================================= */

type ListFormQuery struct {
	ScholarshipID string `query:"scholarship_id"`
	IsActive      *bool  `query:"is_active"`
	Q             string `query:"q"`
}

/* =========================================================
   Response (section = view turunan dari section_title)
========================================================= */

type FieldResponse struct {
	FieldID    string   `json:"field_id"`
	FieldName  string   `json:"field_name"`
	FieldType  string   `json:"field_type"`
	IsRequired bool     `json:"is_required"`
	Order      int      `json:"order"`
	Options    *string  `json:"options,omitempty"`
	OptionList []string `json:"option_list,omitempty"`
	FilePath   *string  `json:"file_path,omitempty"`
	DataKey    string   `json:"data_key"`
}

type SectionResponse struct {
	Title  string          `json:"title"`
	Fields []FieldResponse `json:"fields"`
}

type SettingResponse struct {
	SettingID          string     `json:"setting_id"`
	AcceptResponses    bool       `json:"accept_responses"`
	SubmissionDeadline *time.Time `json:"submission_deadline,omitempty"`
	MaxSubmissions     *int       `json:"max_submissions,omitempty"`
	NotifyEmail        *string    `json:"notify_email,omitempty"`
}

type FormResponse struct {
	FormID        string            `json:"form_id"`
	ScholarshipID string            `json:"scholarship_id"`
	FormName      string            `json:"form_name"`
	Description   *string           `json:"description,omitempty"`
	IsActive      bool              `json:"is_active"`
	CreatedBy     *uuid.UUID        `json:"created_by,omitempty"`
	UpdatedBy     *uuid.UUID        `json:"updated_by,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Setting       *SettingResponse  `json:"setting,omitempty"`
	Sections      []SectionResponse `json:"sections,omitempty"`
}

func FromSetting(s model.FormSettingModel) *SettingResponse {
	return &SettingResponse{
		SettingID:          s.SettingID,
		AcceptResponses:    s.AcceptResponses,
		SubmissionDeadline: s.SubmissionDeadline,
		MaxSubmissions:     s.MaxSubmissions,
		NotifyEmail:        s.NotifyEmail,
	}
}

func FromForm(f model.ScholarshipFormModel) FormResponse {
	return FormResponse{
		FormID:        f.FormID,
		ScholarshipID: f.ScholarshipID,
		FormName:      f.FormName,
		Description:   f.FormDescription,
		IsActive:      f.FormIsActive,
		CreatedBy:     f.FormCreatedBy,
		UpdatedBy:     f.FormUpdatedBy,
		CreatedAt:     f.FormCreatedAt,
		UpdatedAt:     f.FormUpdatedAt,
	}
}

// BuildSections: field diurutkan per field_order, dikelompokkan per section_title
// (urutan section = kemunculan pertama).
func BuildSections(fields []model.FormFieldModel) []SectionResponse {
	sorted := append([]model.FormFieldModel(nil), fields...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].FieldOrder < sorted[j].FieldOrder })

	out := []SectionResponse{}
	idx := map[string]int{}
	for _, f := range sorted {
		i, ok := idx[f.SectionTitle]
		if !ok {
			i = len(out)
			idx[f.SectionTitle] = i
			out = append(out, SectionResponse{Title: f.SectionTitle})
		}
		out[i].Fields = append(out[i].Fields, FieldResponse{
			FieldID:    f.FieldID,
			FieldName:  f.FieldName,
			FieldType:  string(f.FieldType),
			IsRequired: f.IsRequired,
			Order:      f.FieldOrder,
			Options:    f.Options,
			OptionList: f.OptionList(),
			FilePath:   f.FilePath,
			DataKey:    f.DataKey(),
		})
	}
	return out
}

func FromFormDetail(f model.ScholarshipFormModel, s *model.FormSettingModel, fields []model.FormFieldModel) FormResponse {
	resp := FromForm(f)
	if s != nil {
		resp.Setting = FromSetting(*s)
	}
	resp.Sections = BuildSections(fields)
	return resp
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
