package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/gestobra/internal/project"
)

func TestParseProgress(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    int
		wantErr bool
	}

	tests := []testCase{
		{name: "plain number", input: "40", want: 40},
		{name: "percent sign", input: " 75% ", want: 75},
		{name: "bounds", input: "100", want: 100},
		{name: "above range", input: "101", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "not a number", input: "metade", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseProgress(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestProjectsModel_StatusFilter(t *testing.T) {
	m := ProjectsModel{}
	assert.Nil(t, m.statusFilter())

	m.statusFilterIdx = 2
	require.NotNil(t, m.statusFilter())
	assert.Equal(t, project.StatusInProgress, *m.statusFilter())
}
