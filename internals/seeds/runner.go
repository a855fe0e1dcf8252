package seeds

import (
	"context"

	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/helpers/storage"
	"kemahasiswaan_backend/internals/seeds/scholarships"
)

const DefaultScholarshipSeed = "internals/seeds/scholarships/data_scholarships.json"

func RunAllSeeds(ctx context.Context, db *gorm.DB, fs storage.FileStorage, scholarshipFile string) error {
	if scholarshipFile == "" {
		scholarshipFile = DefaultScholarshipSeed
	}

	//* Scholarships + forms
	return scholarships.SeedScholarshipsFromJSON(ctx, db, fs, scholarshipFile)
}
