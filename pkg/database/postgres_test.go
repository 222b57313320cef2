package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/contact-log-api/pkg/config"
)

func TestDSNPinsSessionSettings(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "app", Password: "secret", Name: "contact_log", SSLMode: "disable"})

	assert.Equal(t, "host=db port=5433 user=app password=secret dbname=contact_log sslmode=disable application_name=contact-log-api timezone=UTC", dsn)
}
