package services

import (
	"errors"
	"testing"

	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/pkg/response"
)

func assertAppErrorStatus(t *testing.T, err error, wantStatus int) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *response.AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != wantStatus {
		t.Errorf("HTTPStatus = %d, expected %d (message: %s)", appErr.HTTPStatus, wantStatus, appErr.Message)
	}
}

func TestResolve_Unauthenticated(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	_, err := svc.Resolve(ResolveInput{HeaderID: "anything"})
	assertAppErrorStatus(t, err, 401)
}

func TestResolve_HeaderOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	resolved, err := svc.Resolve(ResolveInput{HeaderID: company.ID, User: owner})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.ID != company.ID {
		t.Errorf("resolved company %s, expected %s", resolved.ID, company.ID)
	}
}

func TestResolve_HeaderBySlug(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	resolved, err := svc.Resolve(ResolveInput{HeaderID: "acme", User: owner})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.ID != company.ID {
		t.Errorf("resolved company %s, expected %s", resolved.ID, company.ID)
	}
}

func TestResolve_HeaderMember(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	staff := createTestUser(t, db, "staff", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	if err := svc.AddMember(company.ID, staff.ID, "staff"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	resolved, err := svc.Resolve(ResolveInput{HeaderID: company.ID, User: staff})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.ID != company.ID {
		t.Errorf("resolved company %s, expected %s", resolved.ID, company.ID)
	}
}

func TestResolve_HeaderDenied(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	outsider := createTestUser(t, db, "outsider", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	// Denied access is an authorization failure, not a lookup failure,
	// and it must not fall through to the ownership rule.
	createTestCompany(t, db, "outsider-co", outsider.ID)

	_, err := svc.Resolve(ResolveInput{HeaderID: company.ID, User: outsider})
	assertAppErrorStatus(t, err, 403)
}

func TestResolve_HeaderNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	user := createTestUser(t, db, "user", models.RoleUser)

	_, err := svc.Resolve(ResolveInput{HeaderID: "no-such-company", User: user})
	assertAppErrorStatus(t, err, 404)
}

func TestResolve_HeaderSuperuser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	company := createTestCompany(t, db, "acme", owner.ID)

	resolved, err := svc.Resolve(ResolveInput{HeaderID: company.ID, User: admin})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.ID != company.ID {
		t.Errorf("resolved company %s, expected %s", resolved.ID, company.ID)
	}
}

func TestResolve_HeaderWinsOverQuery(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	first := createTestCompany(t, db, "first", admin.ID)
	second := createTestCompany(t, db, "second", admin.ID)

	resolved, err := svc.Resolve(ResolveInput{
		HeaderID: first.ID,
		QueryID:  second.ID,
		User:     admin,
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.ID != first.ID {
		t.Errorf("header should win over query parameter, got %s", resolved.Name)
	}
}

func TestResolve_QuerySuperuserOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	regular := createTestUser(t, db, "regular", models.RoleUser)
	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	target := createTestCompany(t, db, "target", owner.ID)
	mine := createTestCompany(t, db, "mine", regular.ID)

	// Superuser may address any company via query parameter.
	resolved, err := svc.Resolve(ResolveInput{QueryID: target.ID, User: admin})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.ID != target.ID {
		t.Errorf("superuser query resolved %s, expected %s", resolved.ID, target.ID)
	}

	// Regular users cannot: the query parameter is ignored and the
	// ownership fallback applies instead.
	resolved, err = svc.Resolve(ResolveInput{QueryID: target.ID, User: regular})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.ID != mine.ID {
		t.Errorf("regular user query resolved %s, expected own company %s", resolved.ID, mine.ID)
	}
}

func TestResolve_OwnershipFallback(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	resolved, err := svc.Resolve(ResolveInput{User: owner})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.ID != company.ID {
		t.Errorf("resolved company %s, expected %s", resolved.ID, company.ID)
	}
}

func TestResolve_OwnershipFallback_FirstOwned(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	first := createTestCompany(t, db, "first", owner.ID)
	createTestCompany(t, db, "second", owner.ID)

	resolved, err := svc.Resolve(ResolveInput{User: owner})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.ID != first.ID {
		t.Errorf("expected first owned company %s, got %s", first.Name, resolved.Name)
	}
}

func TestResolve_NoCompany(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	user := createTestUser(t, db, "lonely", models.RoleUser)

	_, err := svc.Resolve(ResolveInput{User: user})
	assertAppErrorStatus(t, err, 404)
}

func TestResolve_MembershipDoesNotTriggerFallback(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	staff := createTestUser(t, db, "staff", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	if err := svc.AddMember(company.ID, staff.ID, "staff"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	// Membership grants header access but is not an ownership fallback.
	_, err := svc.Resolve(ResolveInput{User: staff})
	assertAppErrorStatus(t, err, 404)
}

func TestCreateCompany(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)

	company, err := svc.Create(owner.ID, &CreateCompanyRequest{Name: "Acme Traders"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if company.Slug != "acme-traders" {
		t.Errorf("Slug = %q, expected %q", company.Slug, "acme-traders")
	}
	if company.Status != models.CompanyStatusTrial {
		t.Errorf("Status = %q, expected trial", company.Status)
	}
	if company.ID == "" {
		t.Error("expected generated company ID")
	}

	_, err = svc.Create(owner.ID, &CreateCompanyRequest{Name: "Acme Traders"})
	assertAppErrorStatus(t, err, 409)
}

func TestCreateCompany_Plans(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)

	company, err := svc.Create(owner.ID, &CreateCompanyRequest{Name: "Premium Shop", Plan: models.PlanPremium})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if company.Plan != models.PlanPremium {
		t.Errorf("Plan = %q, expected premium", company.Plan)
	}

	_, err = svc.Create(owner.ID, &CreateCompanyRequest{Name: "Oddball Shop", Plan: "starter"})
	assertAppErrorStatus(t, err, 400)

	company, err = svc.Create(owner.ID, &CreateCompanyRequest{Name: "Default Shop"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if company.Plan != models.PlanFree {
		t.Errorf("Plan = %q, expected free default", company.Plan)
	}
}

func TestUpdateCompany_InvalidStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	bad := "exploded"
	err := svc.Update(company, &UpdateCompanyRequest{Status: &bad})
	assertAppErrorStatus(t, err, 400)

	good := models.CompanyStatusSuspended
	if err := svc.Update(company, &UpdateCompanyRequest{Status: &good}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	var reloaded models.Company
	db.First(&reloaded, "id = ?", company.ID)
	if reloaded.Status != models.CompanyStatusSuspended {
		t.Errorf("Status = %q, expected suspended", reloaded.Status)
	}
}

func TestRemoveMember_Owner(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCompanyService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	err := svc.RemoveMember(company, owner.ID)
	assertAppErrorStatus(t, err, 400)
}
