package model

import (
	"strconv"
	"strings"
	"time"
)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldDropdown FieldType = "dropdown"
	FieldFile     FieldType = "file"
	FieldQuill    FieldType = "quill"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldDate, FieldDropdown, FieldFile, FieldQuill:
		return true
	}
	return false
}

type FormFieldModel struct {
	FieldID      string    `gorm:"primaryKey;size:16;column:field_id" json:"field_id"`
	FormID       string    `gorm:"size:16;not null;index:idx_form_fields_form_order,priority:1;column:form_id" json:"form_id"`
	SectionTitle string    `gorm:"size:150;not null;column:section_title" json:"section_title"`
	FieldName    string    `gorm:"size:150;not null;column:field_name" json:"field_name"`
	FieldType    FieldType `gorm:"size:20;not null;column:field_type" json:"field_type"`
	IsRequired   bool      `gorm:"not null;column:is_required" json:"is_required"`
	Options      *string   `gorm:"type:text;column:options" json:"options,omitempty"`
	FieldOrder   int       `gorm:"not null;index:idx_form_fields_form_order,priority:2;column:field_order" json:"order"`

	// lampiran/template dari admin (hanya field_type=file), bukan file pendaftar
	FilePath *string `gorm:"type:text;column:file_path" json:"file_path,omitempty"`

	FieldCreatedAt time.Time `gorm:"autoCreateTime;column:field_created_at" json:"field_created_at"`
	FieldUpdatedAt time.Time `gorm:"autoUpdateTime;column:field_updated_at" json:"field_updated_at"`
}

func (FormFieldModel) TableName() string { return "form_fields" }

// DataKey: key jawaban di submission, "<section>.fields.<order>".
func DataKey(sectionTitle string, order int) string {
	return sectionTitle + ".fields." + strconv.Itoa(order)
}

func (f FormFieldModel) DataKey() string { return DataKey(f.SectionTitle, f.FieldOrder) }

// OptionList: options disimpan bebas (baris baru atau koma).
func (f FormFieldModel) OptionList() []string {
	if f.Options == nil {
		return nil
	}
	raw := strings.ReplaceAll(*f.Options, "\n", ",")
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
