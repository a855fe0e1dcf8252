package scholarships

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kemahasiswaan_backend/internals/databases/testdb"
	formModel "kemahasiswaan_backend/internals/features/scholarships/forms/model"
	"kemahasiswaan_backend/internals/features/scholarships/scholarships/model"
	helper "kemahasiswaan_backend/internals/helpers"
	"kemahasiswaan_backend/internals/helpers/storage"
)

func TestSeedScholarshipsFromJSON_Idempotent(t *testing.T) {
	db := testdb.Open(t,
		&helper.IDSequence{},
		&model.ScholarshipModel{},
		&formModel.ScholarshipFormModel{},
		&formModel.FormSettingModel{},
		&formModel.FormFieldModel{},
	)
	fs := storage.NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, SeedScholarshipsFromJSON(ctx, db, fs, "data_scholarships.json"))
	require.NoError(t, SeedScholarshipsFromJSON(ctx, db, fs, "data_scholarships.json"))

	var sch []model.ScholarshipModel
	require.NoError(t, db.Find(&sch).Error)
	require.Len(t, sch, 1)
	assert.Equal(t, "SCH001", sch[0].ScholarshipID)

	var forms []formModel.ScholarshipFormModel
	require.NoError(t, db.Find(&forms).Error)
	require.Len(t, forms, 1)
	assert.Equal(t, "Biodata", forms[0].FormName)

	var fields []formModel.FormFieldModel
	require.NoError(t, db.Order("field_order").Find(&fields).Error)
	require.Len(t, fields, 6)
	for i, f := range fields {
		assert.Equal(t, i+1, f.FieldOrder)
	}
	assert.Equal(t, "Akademik", fields[3].SectionTitle)
}

func TestSeedScholarshipsFromJSON_MissingFile(t *testing.T) {
	db := testdb.Open(t, &helper.IDSequence{}, &model.ScholarshipModel{})
	err := SeedScholarshipsFromJSON(context.Background(), db, storage.NewMemoryStorage(), "tidak-ada.json")
	assert.Error(t, err)
}
