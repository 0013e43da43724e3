package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/models"
)

func TestSchema_Validate(t *testing.T) {
	s := Schema{
		Required: []string{"name", "email"},
		Emails:   []string{"email"},
		URLs:     []string{"website"},
		Integers: []string{"rating"},
	}

	tests := []struct {
		name   string
		fields models.Fields
		want   map[string]string
	}{
		{
			name:   "valid",
			fields: models.Fields{"name": "Ann", "email": "ann@example.com", "website": "https://ann.dev", "rating": float64(5)},
		},
		{
			name:   "optional blanks skipped",
			fields: models.Fields{"name": "Ann", "email": "ann@example.com", "website": "", "rating": nil},
		},
		{
			name:   "missing required reported once",
			fields: models.Fields{},
			want:   map[string]string{"name": "is required", "email": "is required"},
		},
		{
			name:   "bad formats",
			fields: models.Fields{"name": "Ann", "email": "not-an-email", "website": "ftp://x", "rating": 4.5},
			want: map[string]string{
				"email":   "must be a valid email address",
				"website": "must be an absolute http(s) URL",
				"rating":  "must be a whole number",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.fields)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Fields)
		})
	}
}
