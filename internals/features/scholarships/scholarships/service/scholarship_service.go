package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/features/scholarships/scholarships/dto"
	"kemahasiswaan_backend/internals/features/scholarships/scholarships/model"
	helper "kemahasiswaan_backend/internals/helpers"
	"kemahasiswaan_backend/internals/helpers/storage"
)

type Service struct {
	DB      *gorm.DB
	Storage storage.FileStorage
}

func New(db *gorm.DB, fs storage.FileStorage) *Service {
	return &Service{DB: db, Storage: fs}
}

func validateRequest(req *dto.CreateScholarshipRequest) error {
	req.Normalize()
	verr := helper.NewValidationError("validasi beasiswa gagal")
	verr.Merge(helper.ValidateStruct(req))
	if !verr.HasErrors() {
		start, end := req.Dates()
		if end != nil && end.Before(start) {
			verr.Add("scholarship_end_date", "scholarship_end_date tidak boleh sebelum scholarship_start_date")
		}
	}
	return verr.OrNil()
}

func (s *Service) Create(ctx context.Context, actor helper.Principal, req dto.CreateScholarshipRequest, poster *storage.Upload) (*model.ScholarshipModel, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	m := req.ToModel()
	m.ScholarshipCreatedBy = &actor.ID
	m.ScholarshipUpdatedBy = &actor.ID

	var stored string
	if poster != nil {
		ref, err := s.Storage.Store(ctx, storage.DirScholarships, poster)
		if err != nil {
			return nil, err
		}
		stored = ref
		m.ScholarshipPoster = &ref
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := helper.InsertWithSequence(tx, helper.ScholarshipSeq, func(id string) { m.ScholarshipID = id }, &m)
		return err
	})
	if err != nil {
		storage.ReleaseAll(context.Background(), s.Storage, []string{stored})
		return nil, err
	}
	return &m, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.ScholarshipModel, error) {
	return findScholarship(s.DB.WithContext(ctx), id)
}

func findScholarship(db *gorm.DB, id string) (*model.ScholarshipModel, error) {
	var m model.ScholarshipModel
	if err := db.Where("scholarship_id = ?", strings.TrimSpace(id)).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NewNotFound("Beasiswa", id)
		}
		return nil, errors.Wrap(err, "ambil beasiswa")
	}
	return &m, nil
}

var scholarshipSortable = map[string]string{
	"created_at": "scholarship_created_at",
	"name":       "scholarship_name",
	"start_date": "scholarship_start_date",
	"id":         "scholarship_id",
}

func (s *Service) List(ctx context.Context, q dto.ListScholarshipQuery, p helper.Params) ([]model.ScholarshipModel, int64, error) {
	db := s.DB.WithContext(ctx).Model(&model.ScholarshipModel{})
	if kw := strings.TrimSpace(q.Q); kw != "" {
		db = db.Where("LOWER(scholarship_name) LIKE ?", "%"+strings.ToLower(kw)+"%")
	}
	if q.IsActive != nil {
		db = db.Where("scholarship_is_active = ?", *q.IsActive)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "hitung beasiswa")
	}

	var rows []model.ScholarshipModel
	if err := db.Order(p.OrderExpr(scholarshipSortable, "created_at")).
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list beasiswa")
	}
	return rows, total, nil
}

func (s *Service) Update(ctx context.Context, id string, actor helper.Principal, req dto.UpdateScholarshipRequest, poster *storage.Upload) (*model.ScholarshipModel, error) {
	if err := validateRequest(&req.CreateScholarshipRequest); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	var stored string
	if poster != nil {
		ref, err := s.Storage.Store(ctx, storage.DirScholarships, poster)
		if err != nil {
			return nil, err
		}
		stored = ref
	}

	var (
		out      model.ScholarshipModel
		released []string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := findScholarship(tx, id)
		if err != nil {
			return err
		}

		next := req.ToModel()
		cur.ScholarshipName = next.ScholarshipName
		cur.ScholarshipDescription = next.ScholarshipDescription
		cur.ScholarshipStartDate = next.ScholarshipStartDate
		cur.ScholarshipEndDate = next.ScholarshipEndDate
		// PUT tanpa flag → status aktif lama dipertahankan
		if req.ScholarshipIsActive != nil {
			cur.ScholarshipIsActive = next.ScholarshipIsActive
		}
		cur.ScholarshipUpdatedBy = &actor.ID

		switch {
		case stored != "":
			if cur.ScholarshipPoster != nil {
				released = append(released, *cur.ScholarshipPoster)
			}
			cur.ScholarshipPoster = &stored
		case req.RemovePoster && cur.ScholarshipPoster != nil:
			released = append(released, *cur.ScholarshipPoster)
			cur.ScholarshipPoster = nil
		}

		if err := tx.Save(cur).Error; err != nil {
			return errors.Wrap(err, "simpan beasiswa")
		}
		out = *cur
		return nil
	})
	if err != nil {
		storage.ReleaseAll(context.Background(), s.Storage, []string{stored})
		return nil, err
	}
	storage.ReleaseAll(context.Background(), s.Storage, released)
	return &out, nil
}

// Delete ditolak (409) selama masih ada form yang merujuk beasiswa ini.
func (s *Service) Delete(ctx context.Context, id string) error {
	var poster *string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := findScholarship(tx, id)
		if err != nil {
			return err
		}

		var forms int64
		if err := tx.Table("scholarship_forms").Where("scholarship_id = ?", cur.ScholarshipID).Count(&forms).Error; err != nil {
			return errors.Wrap(err, "cek form beasiswa")
		}
		if forms > 0 {
			return helper.NewConflict(helper.ConflictInUse, "Beasiswa masih memiliki form pendaftaran")
		}

		if err := tx.Delete(&model.ScholarshipModel{}, "scholarship_id = ?", cur.ScholarshipID).Error; err != nil {
			return errors.Wrap(err, "hapus beasiswa")
		}
		poster = cur.ScholarshipPoster
		return nil
	})
	if err != nil {
		return err
	}
	if poster != nil {
		storage.ReleaseAll(context.Background(), s.Storage, []string{*poster})
	}
	return nil
}
