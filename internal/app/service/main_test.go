package service

import (
	"os"
	"testing"
	"thundercipher/internal/common/security"
	"thundercipher/internal/platform/config"
)

func TestMain(m *testing.M) {
	config.Load()
	security.InitJWT()
	os.Exit(m.Run())
}
