package tenant_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pharmaops-api/internal/domain/tenant"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

func TestSlugify_NombreSimple(t *testing.T) {
	assert.Equal(t, "main-street-pharmacy", tenant.Slugify("Main Street Pharmacy"))
}

func TestSlugify_Casos(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"HealthFirst Rx", "healthfirst-rx"},
		{"  Community   Care  Pharmacy  ", "community-care-pharmacy"},
		{"Wellness Pharmacy Group, Inc.", "wellness-pharmacy-group-inc"},
		{"A & B Drugs", "a-b-drugs"},
		{"Farmacia Olé", "farmacia-ole"},
		{"Rx-24/7", "rx-247"},
		{"Tab\tand\nnewline", "tab-and-newline"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := tenant.Slugify(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Regexp(t, slugPattern, got)
		})
	}
}

// La derivación es pura: misma entrada, misma salida.
func TestSlugify_Determinista(t *testing.T) {
	in := "St. Mary's -- Specialty   Pharmacy!!"
	first := tenant.Slugify(in)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, tenant.Slugify(in))
	}
	assert.Regexp(t, slugPattern, first)
}

func TestSlugify_SinCaracteresValidos(t *testing.T) {
	assert.Equal(t, "", tenant.Slugify("!!! ???"))
	assert.Equal(t, "", tenant.Slugify(""))
}
