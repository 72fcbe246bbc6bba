package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load("../../configs/config.yml")

	want := Default()
	want.Postgres.User = "shortlink"
	want.Postgres.Password = "shortlink"
	want.Postgres.DB = "shortlink"

	assert.NoError(t, err)
	assert.Equal(t, want, cfg)
}
