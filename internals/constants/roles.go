package constants

import "fmt"

const (
	RoleUser          = "user"
	RoleAdmin         = "admin"
	RoleKemahasiswaan = "kemahasiswaan"
	RoleMahasiswa     = "mahasiswa"
)

// Template pesan error role
const (
	ErrOnlyStaffCanAccess = "❌ Hanya admin atau staf kemahasiswaan yang boleh mengakses fitur %s."
)

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var StaffRoles = []string{
	RoleAdmin,
	RoleKemahasiswaan,
}
