package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/databases/testdb"
	formDto "kemahasiswaan_backend/internals/features/scholarships/forms/dto"
	formModel "kemahasiswaan_backend/internals/features/scholarships/forms/model"
	formService "kemahasiswaan_backend/internals/features/scholarships/forms/service"
	scholarshipModel "kemahasiswaan_backend/internals/features/scholarships/scholarships/model"
	"kemahasiswaan_backend/internals/features/scholarships/submissions/dto"
	"kemahasiswaan_backend/internals/features/scholarships/submissions/model"
	helper "kemahasiswaan_backend/internals/helpers"
	"kemahasiswaan_backend/internals/helpers/mailer"
	"kemahasiswaan_backend/internals/helpers/storage"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []mailer.SubmissionNotice
	err     error
}

func (r *recordingNotifier) NotifySubmission(_ context.Context, n mailer.SubmissionNotice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return r.err
}

type fixture struct {
	svc    *Service
	forms  *formService.Service
	fs     *storage.MemoryStorage
	db     *gorm.DB
	notify *recordingNotifier
	formID string
	fields []formModel.FormFieldModel
}

var staff = helper.Principal{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Role: "kemahasiswaan"}

// newFixture: form "Biodata" berisi Nama (wajib), Alamat (opsional), KTP (file, opsional).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t,
		&helper.IDSequence{},
		&scholarshipModel.ScholarshipModel{},
		&formModel.ScholarshipFormModel{},
		&formModel.FormSettingModel{},
		&formModel.FormFieldModel{},
		&model.FormSubmissionModel{},
	)
	require.NoError(t, db.Create(&scholarshipModel.ScholarshipModel{
		ScholarshipID:        "SCH001",
		ScholarshipName:      "Beasiswa Prestasi",
		ScholarshipStartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ScholarshipIsActive:  true,
	}).Error)

	fs := storage.NewMemoryStorage()
	forms := formService.New(db, fs)
	req, opt := true, false
	form, err := forms.Create(context.Background(), staff, formDto.CreateFormRequest{
		ScholarshipID: "SCH001",
		FormName:      "Biodata",
		Sections: []formDto.SectionInput{{
			Title: "Biodata",
			Fields: []formDto.FieldInput{
				{FieldName: "Nama", FieldType: "text", IsRequired: &req},
				{FieldName: "Alamat", FieldType: "text", IsRequired: &opt},
				{FieldName: "KTP", FieldType: "file", IsRequired: &opt},
			},
		}},
	})
	require.NoError(t, err)
	d, err := forms.Get(context.Background(), form.FormID)
	require.NoError(t, err)

	n := &recordingNotifier{}
	return &fixture{
		svc:    New(db, fs, n),
		forms:  forms,
		fs:     fs,
		db:     db,
		notify: n,
		formID: form.FormID,
		fields: d.Fields,
	}
}

func (f *fixture) settings(t *testing.T, body string) {
	t.Helper()
	var req formDto.UpdateSettingsRequest
	require.NoError(t, sonic.UnmarshalString(body, &req))
	_, err := f.forms.UpdateSettings(context.Background(), f.formID, staff, req)
	require.NoError(t, err)
}

func validSubmit() dto.SubmitRequest {
	return dto.SubmitRequest{Data: map[string]any{"Biodata.fields.1": "Siti"}}
}

func conflictKind(t *testing.T, err error) helper.ConflictKind {
	t.Helper()
	var ce *helper.ConflictError
	require.True(t, errors.As(err, &ce), "err = %v", err)
	return ce.Kind
}

/* ===================== SUBMIT ===================== */

func TestSubmit_DefaultsAndSequentialIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()

	sub, err := f.svc.Submit(ctx, f.formID, user, validSubmit())
	require.NoError(t, err)
	assert.Equal(t, "SUB001", sub.SubmissionID)
	assert.Equal(t, model.StatusMenunggu, sub.Status)
	assert.Equal(t, user, sub.UserID)
	assert.Equal(t, "Siti", sub.Data["Biodata.fields.1"])
	assert.Equal(t, f.fields[0].FieldID, sub.FieldRefs["Biodata.fields.1"])

	sub, err = f.svc.Submit(ctx, f.formID, user, validSubmit())
	require.NoError(t, err)
	assert.Equal(t, "SUB002", sub.SubmissionID)
}

func TestSubmit_RequiredKeyEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.formID, uuid.New(), dto.SubmitRequest{
		Data: map[string]any{"Biodata.fields.2": "Jl. Merdeka"},
	})
	var ve *helper.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "data.Biodata.fields.1")

	// string kosong tetap diterima
	_, err = f.svc.Submit(ctx, f.formID, uuid.New(), dto.SubmitRequest{
		Data: map[string]any{"Biodata.fields.1": ""},
	})
	assert.NoError(t, err)
}

func TestSubmit_AcceptsFieldIDKeys(t *testing.T) {
	f := newFixture(t)
	sub, err := f.svc.Submit(context.Background(), f.formID, uuid.New(), dto.SubmitRequest{
		Data: map[string]any{
			f.fields[0].FieldID: "Rina",
			f.fields[1].FieldID: "Bandung",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rina", sub.Data["Biodata.fields.1"])
	assert.Equal(t, "Bandung", sub.Data["Biodata.fields.2"])
	assert.NotContains(t, sub.Data, f.fields[0].FieldID)
}

func TestSubmit_SameFieldTwiceRejected(t *testing.T) {
	f := newFixture(t)
	nama := f.fields[0]

	// key posisi dan field_id untuk field yang sama → selalu ditolak, apa pun urutan map
	for i := 0; i < 20; i++ {
		_, err := f.svc.Submit(context.Background(), f.formID, uuid.New(), dto.SubmitRequest{
			Data: map[string]any{
				"Biodata.fields.1": "posisi",
				nama.FieldID:       "lewat-id",
			},
		})
		var ve *helper.ValidationError
		require.True(t, errors.As(err, &ve), "err = %v", err)
		require.Contains(t, ve.Fields, "data.Biodata.fields.1")
		assert.Equal(t, []string{"field diisi lebih dari sekali: Biodata.fields.1, " + nama.FieldID},
			ve.Fields["data.Biodata.fields.1"])
	}

	var n int64
	require.NoError(t, f.db.Model(&model.FormSubmissionModel{}).Count(&n).Error)
	assert.Zero(t, n)

	// file ganda untuk satu field juga ditolak
	req := validSubmit()
	req.Files = map[string]*storage.Upload{
		"Biodata.fields.3":  storage.FromBytes("a.pdf", []byte("%PDF a")),
		f.fields[2].FieldID: storage.FromBytes("b.pdf", []byte("%PDF b")),
	}
	_, err := f.svc.Submit(context.Background(), f.formID, uuid.New(), req)
	var ve *helper.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "data[Biodata.fields.3]")
	assert.Empty(t, f.fs.Refs())
}

func TestSubmit_StoresApplicantFile(t *testing.T) {
	f := newFixture(t)
	req := validSubmit()
	req.Files = map[string]*storage.Upload{
		"Biodata.fields.3": storage.FromBytes("ktp.pdf", []byte("%PDF ktp")),
	}

	sub, err := f.svc.Submit(context.Background(), f.formID, uuid.New(), req)
	require.NoError(t, err)
	ref, ok := sub.Data["Biodata.fields.3"].(string)
	require.True(t, ok)
	assert.True(t, f.fs.Has(ref))
	assert.Equal(t, ref, sub.Files["Biodata.fields.3"])
}

func TestSubmit_FileForNonFileFieldRejected(t *testing.T) {
	f := newFixture(t)
	req := validSubmit()
	req.Files = map[string]*storage.Upload{
		"Biodata.fields.2": storage.FromBytes("x.pdf", []byte("%PDF")),
		"Tidak.fields.9":   storage.FromBytes("y.pdf", []byte("%PDF")),
	}

	_, err := f.svc.Submit(context.Background(), f.formID, uuid.New(), req)
	var ve *helper.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "data[Biodata.fields.2]")
	assert.Contains(t, ve.Fields, "data[Tidak.fields.9]")
	assert.Empty(t, f.fs.Refs())
}

func TestSubmit_ClosedRejectsRegardlessOfPayload(t *testing.T) {
	f := newFixture(t)
	f.settings(t, `{"accept_responses":false}`)

	for _, req := range []dto.SubmitRequest{validSubmit(), {Data: map[string]any{}}} {
		_, err := f.svc.Submit(context.Background(), f.formID, uuid.New(), req)
		assert.Equal(t, helper.ConflictClosed, conflictKind(t, err))
	}
}

func TestSubmit_CapReached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.settings(t, `{"max_submissions":2}`)

	for i := 0; i < 2; i++ {
		_, err := f.svc.Submit(ctx, f.formID, uuid.New(), validSubmit())
		require.NoError(t, err)
	}
	_, err := f.svc.Submit(ctx, f.formID, uuid.New(), validSubmit())
	assert.Equal(t, helper.ConflictCap, conflictKind(t, err))

	var n int64
	require.NoError(t, f.db.Model(&model.FormSubmissionModel{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestSubmit_DeadlinePassed(t *testing.T) {
	f := newFixture(t)
	f.settings(t, `{"submission_deadline":"2026-03-01T00:00:00Z"}`)
	f.svc.Now = func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }

	_, err := f.svc.Submit(context.Background(), f.formID, uuid.New(), validSubmit())
	assert.Equal(t, helper.ConflictDeadline, conflictKind(t, err))

	f.svc.Now = func() time.Time { return time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC) }
	_, err = f.svc.Submit(context.Background(), f.formID, uuid.New(), validSubmit())
	assert.NoError(t, err)
}

func TestSubmit_InactiveForm(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&formModel.ScholarshipFormModel{}).
		Where("form_id = ?", f.formID).Update("form_is_active", false).Error)

	_, err := f.svc.Submit(context.Background(), f.formID, uuid.New(), validSubmit())
	assert.Equal(t, helper.ConflictInactive, conflictKind(t, err))
}

func TestSubmit_UnknownForm(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), "SF404", uuid.New(), validSubmit())
	var nf *helper.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestSubmit_RejectedBeforeStoringFiles(t *testing.T) {
	f := newFixture(t)
	f.settings(t, `{"accept_responses":false}`)
	req := validSubmit()
	req.Files = map[string]*storage.Upload{"Biodata.fields.3": storage.FromBytes("ktp.pdf", []byte("%PDF"))}

	_, err := f.svc.Submit(context.Background(), f.formID, uuid.New(), req)
	require.Error(t, err)
	assert.Empty(t, f.fs.Refs())
}

func TestSubmit_NotifiesConfiguredEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.formID, uuid.New(), validSubmit())
	require.NoError(t, err)
	assert.Empty(t, f.notify.notices)

	f.settings(t, `{"notify_email":"staf@kampus.ac.id"}`)
	f.notify.err = errors.New("smtp down")
	sub, err := f.svc.Submit(ctx, f.formID, uuid.New(), validSubmit())
	require.NoError(t, err, "gagal kirim email tidak menggagalkan submit")
	require.Len(t, f.notify.notices, 1)
	assert.Equal(t, "staf@kampus.ac.id", f.notify.notices[0].To)
	assert.Equal(t, sub.SubmissionID, f.notify.notices[0].SubmissionID)
	assert.Equal(t, "Biodata", f.notify.notices[0].FormName)
}

/* ===================== STATUS ===================== */

func TestUpdateStatus_AnyTransitionAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub, err := f.svc.Submit(ctx, f.formID, uuid.New(), validSubmit())
	require.NoError(t, err)

	got, err := f.svc.UpdateStatus(ctx, sub.SubmissionID, "LULUS_TAHAP_AKHIR")
	require.NoError(t, err)
	assert.Equal(t, model.StatusLulusTahapAkhir, got.Status)

	// mundur ke MENUNGGU tetap boleh
	got, err = f.svc.UpdateStatus(ctx, sub.SubmissionID, "menunggu")
	require.NoError(t, err)
	assert.Equal(t, model.StatusMenunggu, got.Status)
}

func TestUpdateStatus_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub, err := f.svc.Submit(ctx, f.formID, uuid.New(), validSubmit())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, sub.SubmissionID, "DITERIMA")
	var ve *helper.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = f.svc.UpdateStatus(ctx, "SUB404", string(model.StatusMenunggu))
	var nf *helper.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

/* ===================== LIST ===================== */

func TestListByFormAndUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	a1, err := f.svc.Submit(ctx, f.formID, alice, validSubmit())
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.formID, bob, validSubmit())
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, a1.SubmissionID, "LULUS_TAHAP_AKHIR")
	require.NoError(t, err)

	p := helper.Params{Page: 1, PerPage: 10, SortBy: "id", SortOrder: "asc"}

	rows, total, err := f.svc.ListByForm(ctx, f.formID, dto.ListSubmissionQuery{}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = f.svc.ListByForm(ctx, f.formID, dto.ListSubmissionQuery{Status: "lulus_tahap_akhir"}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, a1.SubmissionID, rows[0].SubmissionID)

	rows, total, err = f.svc.ListByUser(ctx, bob, p)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, bob, rows[0].UserID)

	_, _, err = f.svc.ListByForm(ctx, "SF404", dto.ListSubmissionQuery{}, p)
	var nf *helper.NotFoundError
	assert.True(t, errors.As(err, &nf))
}
