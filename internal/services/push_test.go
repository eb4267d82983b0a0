package services

import (
	"testing"

	"github.com/threepillars/storefront/internal/models"
)

func TestRegisterDevice(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPushService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	device, err := svc.RegisterDevice(company.ID, &owner.ID, &RegisterDeviceRequest{
		Token:    "tok-1",
		Platform: models.PlatformAndroid,
	})
	if err != nil {
		t.Fatalf("RegisterDevice() error = %v", err)
	}
	if !device.Active {
		t.Error("new device should be active")
	}

	_, err = svc.RegisterDevice(company.ID, nil, &RegisterDeviceRequest{
		Token:    "tok-2",
		Platform: "blackberry",
	})
	assertAppErrorStatus(t, err, 400)
}

func TestRegisterDevice_TokenMovesCompany(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPushService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	acme := createTestCompany(t, db, "acme", owner.ID)
	beta := createTestCompany(t, db, "beta", owner.ID)

	svc.RegisterDevice(acme.ID, nil, &RegisterDeviceRequest{Token: "tok-1", Platform: models.PlatformIOS})
	moved, err := svc.RegisterDevice(beta.ID, nil, &RegisterDeviceRequest{Token: "tok-1", Platform: models.PlatformIOS})
	if err != nil {
		t.Fatalf("RegisterDevice() re-register error = %v", err)
	}
	if moved.CompanyID != beta.ID {
		t.Errorf("CompanyID = %s, expected token to move to %s", moved.CompanyID, beta.ID)
	}

	var count int64
	db.Model(&models.PushDevice{}).Where("token = ?", "tok-1").Count(&count)
	if count != 1 {
		t.Errorf("device rows = %d, expected 1", count)
	}
}

func TestUnregisterDevice(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPushService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)
	svc.RegisterDevice(company.ID, nil, &RegisterDeviceRequest{Token: "tok-1", Platform: models.PlatformWeb})

	if err := svc.UnregisterDevice(company.ID, "tok-1"); err != nil {
		t.Fatalf("UnregisterDevice() error = %v", err)
	}

	devices, _ := svc.ListDevices(company.ID)
	if len(devices) != 0 {
		t.Errorf("active devices = %d, expected 0", len(devices))
	}

	err := svc.UnregisterDevice(company.ID, "missing")
	assertAppErrorStatus(t, err, 404)
}

func TestQueueMessage(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPushService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	msg, err := svc.QueueMessage(company.ID, &SendPushRequest{
		Title: "Sale",
		Body:  "Everything 10% off",
		Data:  map[string]string{"screen": "catalog"},
	})
	if err != nil {
		t.Fatalf("QueueMessage() error = %v", err)
	}
	if msg.Status != models.PushStatusQueued {
		t.Errorf("Status = %q, expected queued", msg.Status)
	}
	if msg.Data == "" {
		t.Error("data payload should be stored")
	}
}
