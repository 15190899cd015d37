package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/student-records-api/pkg/config"
)

func TestDSNDefaultsSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "edustream"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=edustream sslmode=disable", dsn)
}

func TestDSNKeepsSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "edustream", SSLMode: "require"})
	assert.Contains(t, dsn, "sslmode=require")
}
