package authz

import (
	"fmt"
	"strings"
)

// Permission names a single grantable admin capability. The set is fixed and
// versioned with the system; unknown values are rejected at the boundary
// rather than stored.
type Permission string

const (
	// Student management.
	PermViewStudents    Permission = "can_view_students"
	PermCreateStudents  Permission = "can_create_students"
	PermEditStudents    Permission = "can_edit_students"
	PermDeleteStudents  Permission = "can_delete_students"
	PermApproveStudents Permission = "can_approve_students"

	// Teacher management.
	PermViewTeachers   Permission = "can_view_teachers"
	PermCreateTeachers Permission = "can_create_teachers"
	PermEditTeachers   Permission = "can_edit_teachers"
	PermDeleteTeachers Permission = "can_delete_teachers"

	// Academic taxonomy.
	PermManageClasses   Permission = "can_manage_classes"
	PermManageSubjects  Permission = "can_manage_subjects"
	PermManageSemesters Permission = "can_manage_semesters"

	// Grades.
	PermViewGrades Permission = "can_view_grades"
	PermEditGrades Permission = "can_edit_grades"

	// Attendance.
	PermViewAttendance Permission = "can_view_attendance"
	PermMarkAttendance Permission = "can_mark_attendance"

	// Documents.
	PermViewDocuments   Permission = "can_view_documents"
	PermUploadDocuments Permission = "can_upload_documents"
	PermDeleteDocuments Permission = "can_delete_documents"

	// System.
	PermViewReports     Permission = "can_view_reports"
	PermConfigureSystem Permission = "can_configure_system"
)

var allPermissions = []Permission{
	PermViewStudents, PermCreateStudents, PermEditStudents, PermDeleteStudents, PermApproveStudents,
	PermViewTeachers, PermCreateTeachers, PermEditTeachers, PermDeleteTeachers,
	PermManageClasses, PermManageSubjects, PermManageSemesters,
	PermViewGrades, PermEditGrades,
	PermViewAttendance, PermMarkAttendance,
	PermViewDocuments, PermUploadDocuments, PermDeleteDocuments,
	PermViewReports, PermConfigureSystem,
}

var permissionSet = func() map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(allPermissions))
	for _, p := range allPermissions {
		set[p] = struct{}{}
	}
	return set
}()

// Permissions returns the full permission catalogue in a stable order.
func Permissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// ParsePermission converts a raw string into a Permission, rejecting values
// outside the catalogue.
func ParsePermission(value string) (Permission, error) {
	perm := Permission(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := permissionSet[perm]; !ok {
		return "", fmt.Errorf("unknown permission %q", value)
	}
	return perm, nil
}

// IsValid reports whether the permission belongs to the catalogue.
func (p Permission) IsValid() bool {
	_, ok := permissionSet[p]
	return ok
}

func (p Permission) String() string {
	return string(p)
}
