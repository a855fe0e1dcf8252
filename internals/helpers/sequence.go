package helper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxSequenceAttempts = 5

// SequenceSpec: ID berformat <prefix><angka zero-padded>, mis. SF001, FF012, SUB100.
type SequenceSpec struct {
	Table  string
	Column string
	Prefix string
	Width  int
}

var (
	ScholarshipSeq = SequenceSpec{Table: "scholarships", Column: "scholarship_id", Prefix: "SCH", Width: 3}
	FormSeq        = SequenceSpec{Table: "scholarship_forms", Column: "form_id", Prefix: "SF", Width: 3}
	FormSettingSeq = SequenceSpec{Table: "form_settings", Column: "setting_id", Prefix: "FS", Width: 3}
	FormFieldSeq   = SequenceSpec{Table: "form_fields", Column: "field_id", Prefix: "FF", Width: 3}
	SubmissionSeq  = SequenceSpec{Table: "form_submissions", Column: "submission_id", Prefix: "SUB", Width: 3}
)

// FormatSequence: ("SF", 3, 7) → "SF007"; lebar bertambah sendiri lewat 999.
func FormatSequence(prefix string, width, n int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}

// IDSequence: counter per prefix, hanya naik. ID yang sudah dipakai baris
// yang dihapus tidak pernah dibagikan lagi.
type IDSequence struct {
	Prefix    string `gorm:"primaryKey;size:8;column:prefix"`
	LastValue int    `gorm:"not null;column:last_value"`
}

func (IDSequence) TableName() string { return "id_sequences" }

// lastExisting: nomor tertinggi yang sudah ada di tabel (urut panjang lalu leksikal).
func lastExisting(tx *gorm.DB, spec SequenceSpec) (int, error) {
	var ids []string
	err := tx.Table(spec.Table).
		Where(spec.Column+" LIKE ?", spec.Prefix+"%").
		Order("LENGTH(" + spec.Column + ") DESC, " + spec.Column + " DESC").
		Limit(1).
		Pluck(spec.Column, &ids).Error
	if err != nil {
		return 0, errors.Wrapf(err, "read last %s", spec.Column)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	n, convErr := strconv.Atoi(strings.TrimPrefix(ids[0], spec.Prefix))
	if convErr != nil {
		return 0, nil
	}
	return n, nil
}

// Sequence mengunci counter prefix (FOR UPDATE di PostgreSQL), menaikkannya,
// lalu mengembalikan ID berikutnya. Baris yang disisipkan di luar counter
// (seed manual, data lama) ikut diperhitungkan.
func Sequence(tx *gorm.DB, spec SequenceSpec) (string, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&IDSequence{Prefix: spec.Prefix}).Error; err != nil {
		return "", errors.Wrapf(err, "init sequence %s", spec.Prefix)
	}

	var counter IDSequence
	if err := ForUpdate(tx).Where("prefix = ?", spec.Prefix).Take(&counter).Error; err != nil {
		return "", errors.Wrapf(err, "lock sequence %s", spec.Prefix)
	}

	last, err := lastExisting(tx, spec)
	if err != nil {
		return "", err
	}
	if counter.LastValue > last {
		last = counter.LastValue
	}

	next := last + 1
	if err := tx.Model(&IDSequence{}).Where("prefix = ?", spec.Prefix).
		Update("last_value", next).Error; err != nil {
		return "", errors.Wrapf(err, "bump sequence %s", spec.Prefix)
	}
	return FormatSequence(spec.Prefix, spec.Width, next), nil
}

// diganti di test untuk mensimulasikan penulis paralel
var nextSequence = Sequence

// InsertWithSequence: generate ID → SAVEPOINT → INSERT. Jika primary key bentrok
// (penulis lain mengambil nomor yang sama), rollback ke savepoint lalu coba lagi.
// Wajib dipanggil di dalam transaksi dengan gorm.Config.TranslateError aktif.
func InsertWithSequence(tx *gorm.DB, spec SequenceSpec, assign func(id string), value any) (string, error) {
	for attempt := 1; attempt <= maxSequenceAttempts; attempt++ {
		id, err := nextSequence(tx, spec)
		if err != nil {
			return "", err
		}
		assign(id)

		sp := fmt.Sprintf("seq_%s_%d", strings.ToLower(spec.Prefix), attempt)
		if err := tx.SavePoint(sp).Error; err != nil {
			return "", errors.Wrap(err, "savepoint")
		}

		err = tx.Create(value).Error
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", errors.Wrapf(err, "insert %s", spec.Table)
		}
		if rbErr := tx.RollbackTo(sp).Error; rbErr != nil {
			return "", errors.Wrap(rbErr, "rollback to savepoint")
		}
	}
	return "", NewConflict(ConflictDuplicate,
		fmt.Sprintf("gagal membuat %s unik setelah %d percobaan", spec.Column, maxSequenceAttempts))
}
