package routes

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kemahasiswaan_backend/internals/databases/testdb"
	formModel "kemahasiswaan_backend/internals/features/scholarships/forms/model"
	scholarshipModel "kemahasiswaan_backend/internals/features/scholarships/scholarships/model"
	submissionModel "kemahasiswaan_backend/internals/features/scholarships/submissions/model"
	helper "kemahasiswaan_backend/internals/helpers"
	"kemahasiswaan_backend/internals/helpers/mailer"
	"kemahasiswaan_backend/internals/helpers/storage"
)

const secret = "rahasia-routes"

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    map[string]any      `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

type harness struct {
	t   *testing.T
	app *fiber.App
	fs  *storage.MemoryStorage
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testdb.Open(t,
		&helper.IDSequence{},
		&scholarshipModel.ScholarshipModel{},
		&formModel.ScholarshipFormModel{},
		&formModel.FormSettingModel{},
		&formModel.FormFieldModel{},
		&submissionModel.FormSubmissionModel{},
	)
	fs := storage.NewMemoryStorage()
	app := fiber.New(fiber.Config{JSONEncoder: sonic.Marshal, JSONDecoder: sonic.Unmarshal})
	SetupRoutes(app, Deps{DB: db, Storage: fs, Notifier: mailer.NopNotifier{}, JWTSecret: secret})
	return &harness{t: t, app: app, fs: fs}
}

func (h *harness) token(role string) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   uuid.NewString(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(h.t, err)
	return tok
}

func (h *harness) send(req *http.Request, tok string) (int, envelope) {
	h.t.Helper()
	if tok != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)

	var raw struct {
		envelope
		Data any `json:"data"`
	}
	if len(body) > 0 && body[0] == '{' {
		require.NoError(h.t, sonic.Unmarshal(body, &raw), string(body))
	}
	env := raw.envelope
	env.Data, _ = raw.Data.(map[string]any)
	return resp.StatusCode, env
}

func (h *harness) json(method, path, tok string, body any) (int, envelope) {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := sonic.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return h.send(req, tok)
}

func (h *harness) createScholarship(tok string) string {
	h.t.Helper()
	status, env := h.json(fiber.MethodPost, "/api/a/scholarships", tok, map[string]any{
		"scholarship_name":       "Beasiswa Prestasi",
		"scholarship_start_date": "2026-01-01",
	})
	require.Equal(h.t, fiber.StatusCreated, status, env.Message)
	return env.Data["scholarship_id"].(string)
}

func biodataForm(scholarshipID string) map[string]any {
	return map[string]any{
		"scholarship_id": scholarshipID,
		"form_name":      "Biodata",
		"sections": []any{
			map[string]any{
				"title": "Biodata",
				"fields": []any{
					map[string]any{"field_name": "Nama", "field_type": "text", "is_required": true},
					map[string]any{"field_name": "KTP", "field_type": "file", "is_required": false},
				},
			},
		},
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(fiber.MethodGet, "/health", nil)
	resp, err := h.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminRoutesRequireStaff(t *testing.T) {
	h := newHarness(t)

	status, _ := h.json(fiber.MethodGet, "/api/a/forms", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = h.json(fiber.MethodGet, "/api/a/forms", h.token("mahasiswa"), nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = h.json(fiber.MethodGet, "/api/a/forms", h.token("kemahasiswaan"), nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestFormLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	staff := h.token("admin")
	student := h.token("mahasiswa")
	schID := h.createScholarship(staff)

	// create
	status, env := h.json(fiber.MethodPost, "/api/a/forms", staff, biodataForm(schID))
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	formID := env.Data["form_id"].(string)
	assert.Equal(t, "SF001", formID)

	// validasi gagal → 422 dengan path field
	bad := biodataForm(schID)
	bad["form_name"] = ""
	status, env = h.json(fiber.MethodPost, "/api/a/forms", staff, bad)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Errors, "form_name")

	// public detail
	status, env = h.json(fiber.MethodGet, "/api/public/forms/"+formID, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	sections := env.Data["sections"].([]any)
	require.Len(t, sections, 1)

	// submit tanpa field wajib → 422
	status, env = h.json(fiber.MethodPost, "/api/u/forms/"+formID+"/submissions", student, map[string]any{
		"data": map[string]any{"Biodata.fields.2": ""},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Errors, "data.Biodata.fields.1")

	// submit valid → 201
	status, env = h.json(fiber.MethodPost, "/api/u/forms/"+formID+"/submissions", student, map[string]any{
		"data": map[string]any{"Biodata.fields.1": "Siti"},
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	subID := env.Data["submission_id"].(string)
	assert.Equal(t, "MENUNGGU", env.Data["status"])

	// status update
	status, env = h.json(fiber.MethodPatch, "/api/a/submissions/"+subID, staff, map[string]any{"status": "LULUS_ADMINISTRASI"})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.Equal(t, "LULUS_ADMINISTRASI", env.Data["status"])

	status, _ = h.json(fiber.MethodPatch, "/api/a/submissions/"+subID, staff, map[string]any{"status": "BEBAS"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	// tutup form → 403
	status, _ = h.json(fiber.MethodPatch, "/api/a/forms/"+formID+"/settings", staff, map[string]any{"accept_responses": false})
	require.Equal(t, fiber.StatusOK, status)
	status, _ = h.json(fiber.MethodPost, "/api/u/forms/"+formID+"/submissions", student, map[string]any{
		"data": map[string]any{"Biodata.fields.1": "Budi"},
	})
	assert.Equal(t, fiber.StatusForbidden, status)

	// scholarship masih punya form → 409
	status, _ = h.json(fiber.MethodDelete, "/api/a/scholarships/"+schID, staff, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	// hapus form → 200, lalu 404
	status, _ = h.json(fiber.MethodDelete, "/api/a/forms/"+formID, staff, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = h.json(fiber.MethodGet, "/api/a/forms/"+formID, staff, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestMultipartFormWithTemplate(t *testing.T) {
	h := newHarness(t)
	staff := h.token("admin")
	schID := h.createScholarship(staff)

	payload, err := sonic.MarshalString(biodataForm(schID))
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("payload", payload))
	fw, err := mw.CreateFormFile("sections[0][fields][1][file]", "template-ktp.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 template"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/a/forms", &buf)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
	status, env := h.send(req, staff)
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	require.Len(t, h.fs.Refs(), 1)

	status, env = h.json(fiber.MethodGet, "/api/a/forms/"+env.Data["form_id"].(string), staff, nil)
	require.Equal(t, fiber.StatusOK, status)
	fields := env.Data["sections"].([]any)[0].(map[string]any)["fields"].([]any)
	assert.Equal(t, h.fs.Refs()[0], fields[1].(map[string]any)["file_path"])
}

func TestMultipartSubmitWithApplicantFile(t *testing.T) {
	h := newHarness(t)
	staff := h.token("admin")
	schID := h.createScholarship(staff)
	status, env := h.json(fiber.MethodPost, "/api/a/forms", staff, biodataForm(schID))
	require.Equal(t, fiber.StatusCreated, status)
	formID := env.Data["form_id"].(string)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("data", `{"Biodata.fields.1":"Siti"}`))
	fw, err := mw.CreateFormFile("data[Biodata.fields.2]", "ktp.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 ktp"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/u/forms/"+formID+"/submissions", &buf)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
	status, env = h.send(req, h.token("mahasiswa"))
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	data := env.Data["data"].(map[string]any)
	ref, ok := data["Biodata.fields.2"].(string)
	require.True(t, ok)
	assert.True(t, h.fs.Has(ref))
}

func TestListMineOnlyReturnsOwnSubmissions(t *testing.T) {
	h := newHarness(t)
	staff := h.token("admin")
	schID := h.createScholarship(staff)
	_, env := h.json(fiber.MethodPost, "/api/a/forms", staff, biodataForm(schID))
	formID := env.Data["form_id"].(string)

	alice, bob := h.token("mahasiswa"), h.token("mahasiswa")
	for _, tok := range []string{alice, alice, bob} {
		status, _ := h.json(fiber.MethodPost, "/api/u/forms/"+formID+"/submissions", tok, map[string]any{
			"data": map[string]any{"Biodata.fields.1": "x"},
		})
		require.Equal(t, fiber.StatusCreated, status)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/api/u/submissions", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+alice)
	resp, err := h.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list struct {
		Data       []map[string]any `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, sonic.Unmarshal(body, &list))
	assert.EqualValues(t, 2, list.Pagination.Total)
	assert.Len(t, list.Data, 2)
}

func TestMultipartFormReportsAllViolationsAtOnce(t *testing.T) {
	h := newHarness(t)
	staff := h.token("admin")
	schID := h.createScholarship(staff)

	bad := biodataForm(schID)
	bad["form_name"] = ""
	payload, err := sonic.MarshalString(bad)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("payload", payload))
	fw, err := mw.CreateFormFile("sections[0][fields][5][file]", "nyasar.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/a/forms", &buf)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
	status, env := h.send(req, staff)

	require.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Errors, "form_name")
	assert.Contains(t, env.Errors, "sections[0].fields[5].file")
	assert.Empty(t, h.fs.Refs())
}
