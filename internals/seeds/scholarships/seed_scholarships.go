package scholarships

import (
	"context"
	"os"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/configs"
	formDto "kemahasiswaan_backend/internals/features/scholarships/forms/dto"
	formService "kemahasiswaan_backend/internals/features/scholarships/forms/service"
	scholarshipDto "kemahasiswaan_backend/internals/features/scholarships/scholarships/dto"
	"kemahasiswaan_backend/internals/features/scholarships/scholarships/model"
	scholarshipService "kemahasiswaan_backend/internals/features/scholarships/scholarships/service"
	helper "kemahasiswaan_backend/internals/helpers"
	"kemahasiswaan_backend/internals/helpers/storage"
)

type ScholarshipSeed struct {
	scholarshipDto.CreateScholarshipRequest
	Forms []formDto.FormPayload `json:"forms"`
}

// seeder: user sistem untuk kolom created_by
var seeder = helper.Principal{
	ID:   uuid.MustParse("00000000-0000-0000-0000-000000000001"),
	Role: "admin",
}

// SeedScholarshipsFromJSON lewat service (id berurutan + validasi sama dengan API).
// Beasiswa yang namanya sudah ada dilewati.
func SeedScholarshipsFromJSON(ctx context.Context, db *gorm.DB, fs storage.FileStorage, filePath string) error {
	configs.SLog.Infof("📥 Membaca file: %s", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		return errors.Wrap(err, "baca file seed")
	}
	var seeds []ScholarshipSeed
	if err := sonic.Unmarshal(file, &seeds); err != nil {
		return errors.Wrap(err, "decode JSON seed")
	}

	schSvc := scholarshipService.New(db, fs)
	formSvc := formService.New(db, fs)

	inserted := 0
	for _, s := range seeds {
		var n int64
		if err := db.WithContext(ctx).Model(&model.ScholarshipModel{}).
			Where("scholarship_name = ?", s.ScholarshipName).Count(&n).Error; err != nil {
			return errors.Wrap(err, "cek beasiswa")
		}
		if n > 0 {
			configs.SLog.Infof("ℹ️ Beasiswa '%s' sudah ada, dilewati.", s.ScholarshipName)
			continue
		}

		sch, err := schSvc.Create(ctx, seeder, s.CreateScholarshipRequest, nil)
		if err != nil {
			return errors.Wrapf(err, "seed beasiswa %s", s.ScholarshipName)
		}
		for _, f := range s.Forms {
			f.ScholarshipID = sch.ScholarshipID
			form, err := formSvc.Create(ctx, seeder, f)
			if err != nil {
				return errors.Wrapf(err, "seed form %s", f.FormName)
			}
			configs.SLog.Infof("✅ Form %s (%s) dibuat", form.FormID, form.FormName)
		}
		inserted++
	}

	if inserted == 0 {
		configs.SLog.Info("ℹ️ Tidak ada beasiswa baru untuk diinsert.")
		return nil
	}
	configs.SLog.Infof("✅ Berhasil insert %d beasiswa", inserted)
	return nil
}
