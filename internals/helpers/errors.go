package helper

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError: input salah/kurang. Fields berisi semua pelanggaran sekaligus
// (key = path JSON, mis. "sections[0].fields[1].field_type").
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func NewValidationError(message string) *ValidationError {
	if strings.TrimSpace(message) == "" {
		message = "validation failed"
	}
	return &ValidationError{Message: message, Fields: map[string][]string{}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Merge(fields map[string][]string) {
	for k, msgs := range fields {
		for _, m := range msgs {
			e.Add(k, m)
		}
	}
}

func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// OrNil supaya bisa `return verr.OrNil()` tanpa jebakan typed-nil.
func (e *ValidationError) OrNil() error {
	if e == nil || !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// NotFoundError: form/field/submission/scholarship tidak ada.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " tidak ditemukan"
	}
	return fmt.Sprintf("%s %s tidak ditemukan", e.Resource, e.ID)
}

type ConflictKind string

const (
	ConflictClosed    ConflictKind = "closed"     // accept_responses=false
	ConflictDeadline  ConflictKind = "deadline"   // submission_deadline lewat
	ConflictCap       ConflictKind = "cap"        // max_submissions tercapai
	ConflictInactive  ConflictKind = "inactive"   // form nonaktif
	ConflictDuplicate ConflictKind = "duplicate"  // tabrakan ID sekuensial
	ConflictInUse     ConflictKind = "in_use"     // masih direferensikan
)

// ConflictError: pelanggaran acceptance window atau tabrakan data.
type ConflictError struct {
	Kind    ConflictKind
	Message string
}

func NewConflict(kind ConflictKind, message string) *ConflictError {
	return &ConflictError{Kind: kind, Message: message}
}

func (e *ConflictError) Error() string { return e.Message }

// Forbidden: true untuk penolakan acceptance window (403), false → 409.
func (e *ConflictError) Forbidden() bool {
	switch e.Kind {
	case ConflictClosed, ConflictDeadline, ConflictCap, ConflictInactive:
		return true
	}
	return false
}

// StorageError: gagal simpan/hapus file.
type StorageError struct {
	Op  string
	Ref string
	Err error
}

func (e *StorageError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Ref, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
