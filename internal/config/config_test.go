package config_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/gestobra/internal/config"
)

func TestLoad_ReportsTimezone(t *testing.T) {
	type testCase struct {
		name     string
		timezone string
		wantLoc  string
		wantErr  bool
	}

	tests := []testCase{
		{
			name:     "Valid",
			timezone: "Europe/Lisbon",
			wantLoc:  "Europe/Lisbon",
		},
		{
			name:     "UTC",
			timezone: "UTC",
			wantLoc:  "UTC",
		},
		{
			name:     "Unknown",
			timezone: "Mars/Olympus_Mons",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REPORTS_TIMEZONE", tt.timezone)

			cfg, err := config.Load()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "REPORTS_TIMEZONE")
				assert.Nil(t, cfg)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantLoc, cfg.Location().String())
		})
	}
}

func TestConfig_LocationFallsBackToUTC(t *testing.T) {
	var cfg config.Config
	cfg.Reports.Timezone = "Mars/Olympus_Mons"

	assert.Equal(t, time.UTC, cfg.Location())
}
