package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 62, cfg.Holidays.LookbackDays)
	assert.Equal(t, time.Hour, cfg.Holidays.CacheTTL)
	assert.Equal(t, 3, cfg.Entries.SubmitMaxAttempts)
	assert.Equal(t, 200, cfg.Dashboard.HistoryLimit)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "Asia/Tokyo", cfg.School.Timezone)
	assert.True(t, cfg.Export.CSVWithBOM)
	assert.Empty(t, cfg.Export.PDFFontPath)
}

func TestFromViperFallbacks(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("HOLIDAY_LOOKBACK_DAYS", -4)
	v.Set("SUBMIT_MAX_ATTEMPTS", 0)
	v.Set("HOLIDAY_CACHE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := fromViper(v)
	assert.Equal(t, 62, cfg.Holidays.LookbackDays)
	assert.Equal(t, 3, cfg.Entries.SubmitMaxAttempts)
	assert.Equal(t, time.Hour, cfg.Holidays.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestSchoolLocation(t *testing.T) {
	assert.Equal(t, time.UTC, SchoolConfig{}.Location())
	assert.Equal(t, time.UTC, SchoolConfig{Timezone: "Mars/Olympus"}.Location())
}
