package database

import (
	"testing"

	"attendance.service/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{DBUser: "user", DBPassword: "pw", DBHost: "db", DBPort: "5432", DBName: "attendance_db"}

	assert.Equal(t, "postgres://user:pw@db:5432/attendance_db?sslmode=disable", DSN(cfg))
}
