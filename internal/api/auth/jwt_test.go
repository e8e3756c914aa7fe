package auth

import (
	"testing"
	"time"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

func TestEmployeeTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	employee := &models.Employee{
		EmployeeID: "admin",
		Nome:       "Administrator",
		Role:       models.EmployeeRoleMaster,
	}

	token, err := manager.GenerateEmployeeToken(employee)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.Kind != PrincipalAdminStaff {
		t.Errorf("Expected admin_staff kind, got %s", claims.Kind)
	}
	if claims.EmployeeID != "admin" {
		t.Errorf("Expected employee admin, got %s", claims.EmployeeID)
	}
	if claims.Role != models.EmployeeRoleMaster {
		t.Errorf("Expected master role, got %s", claims.Role)
	}
}

func TestClientTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	record := &models.ClientRecord{IDLuid: "cliente001"}

	token, err := manager.GenerateClientToken(record)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.Kind != PrincipalClient {
		t.Errorf("Expected client kind, got %s", claims.Kind)
	}
	if claims.IDLuid != "cliente001" {
		t.Errorf("Expected cliente001, got %s", claims.IDLuid)
	}
}

func TestTokenFromDifferentSecretRejected(t *testing.T) {
	manager := NewJWTManager("secret-a", time.Hour)
	other := NewJWTManager("secret-b", time.Hour)

	token, err := other.GenerateClientToken(&models.ClientRecord{IDLuid: "cliente001"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := manager.ValidateToken(token); err == nil {
		t.Error("Expected validation to fail for a token signed with a different secret")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.GenerateClientToken(&models.ClientRecord{IDLuid: "cliente001"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := manager.ValidateToken(token); err == nil {
		t.Error("Expected validation to fail for an expired token")
	}
}

func TestRefreshProducesValidToken(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.GenerateEmployeeToken(&models.Employee{
		EmployeeID: "joao",
		Role:       models.EmployeeRoleEmployee,
	})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	refreshed, err := manager.RefreshToken(token)
	if err != nil {
		t.Fatalf("Failed to refresh token: %v", err)
	}

	claims, err := manager.ValidateToken(refreshed)
	if err != nil {
		t.Fatalf("Refreshed token must validate: %v", err)
	}
	if claims.EmployeeID != "joao" {
		t.Errorf("Expected refreshed claims to keep the principal, got %s", claims.EmployeeID)
	}
}

func TestExtractTokenFromBearer(t *testing.T) {
	token, err := ExtractTokenFromBearer("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Errorf("Expected raw token, got %s", token)
	}

	if _, err := ExtractTokenFromBearer("abc.def.ghi"); err == nil {
		t.Error("Expected error for a header without the Bearer prefix")
	}
	if _, err := ExtractTokenFromBearer(""); err == nil {
		t.Error("Expected error for an empty header")
	}
}
