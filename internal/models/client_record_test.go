package models

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	record := &ClientRecord{IDLuid: "cliente001"}
	record.ApplyDefaults()

	if record.VMStatus != VMStatusOnline {
		t.Errorf("Expected default vm status online, got %s", record.VMStatus)
	}
	if record.OperatingSystem != OSUbuntu {
		t.Errorf("Expected default OS ubuntu, got %s", record.OperatingSystem)
	}

	// Явно задані значення не перезаписуються
	record = &ClientRecord{VMStatus: VMStatusMaintenance, OperatingSystem: OSWindows}
	record.ApplyDefaults()

	if record.VMStatus != VMStatusMaintenance || record.OperatingSystem != OSWindows {
		t.Error("ApplyDefaults must not overwrite explicit values")
	}
}

func TestVMStatusValidation(t *testing.T) {
	for _, valid := range []VMStatus{VMStatusOnline, VMStatusOffline, VMStatusMaintenance} {
		if !valid.IsValid() {
			t.Errorf("Expected %s to be valid", valid)
		}
	}
	if VMStatus("rebooting").IsValid() {
		t.Error("Expected unknown status to be invalid")
	}
}

func TestOperatingSystemValidation(t *testing.T) {
	for _, valid := range []OperatingSystem{OSWindows, OSUbuntu} {
		if !valid.IsValid() {
			t.Errorf("Expected %s to be valid", valid)
		}
	}
	if OperatingSystem("debian").IsValid() {
		t.Error("Expected unsupported OS to be invalid")
	}
}

func TestCheckPortalPassword(t *testing.T) {
	record := &ClientRecord{SenhaCliente: "senha123"}

	if !record.CheckPortalPassword("senha123") {
		t.Error("Expected matching password to pass")
	}
	if record.CheckPortalPassword("Senha123") {
		t.Error("Expected comparison to be exact")
	}
}

func TestPlanExpiry(t *testing.T) {
	record := &ClientRecord{}
	if record.PlanExpired() || record.PlanExpiresWithin(time.Hour) {
		t.Error("Record without expiry never expires")
	}

	past := time.Now().Add(-time.Hour)
	record.PlanExpiry = &past
	if !record.PlanExpired() {
		t.Error("Expected past expiry to be expired")
	}
	if record.PlanExpiresWithin(24 * time.Hour) {
		t.Error("Already expired plan is not 'expiring within'")
	}

	soon := time.Now().Add(3 * 24 * time.Hour)
	record.PlanExpiry = &soon
	if !record.PlanExpiresWithin(7 * 24 * time.Hour) {
		t.Error("Expected plan expiring in 3 days to be within a 7 day window")
	}
	if record.PlanExpiresWithin(24 * time.Hour) {
		t.Error("Plan expiring in 3 days is outside a 1 day window")
	}
}

func TestEmployeePasswordHashing(t *testing.T) {
	employee := &Employee{EmployeeID: "admin"}

	if err := employee.SetPassword("master-pass"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if employee.PasswordHash == "master-pass" {
		t.Error("Password must never be stored as plaintext")
	}
	if !employee.CheckPassword("master-pass") {
		t.Error("Expected correct password to verify")
	}
	if employee.CheckPassword("wrong") {
		t.Error("Expected wrong password to fail")
	}
}

func TestEmployeeRoles(t *testing.T) {
	master := &Employee{Role: EmployeeRoleMaster}
	staff := &Employee{Role: EmployeeRoleEmployee}

	if !master.IsMaster() || staff.IsMaster() {
		t.Error("Role derivation mismatch")
	}
	if EmployeeRole("superadmin").IsValid() {
		t.Error("Expected unknown role to be invalid")
	}
}
