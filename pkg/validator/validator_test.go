package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressPayload struct {
	Street     string `json:"direccion" validate:"required"`
	City       string `json:"ciudad" validate:"required"`
	PostalCode string `json:"codigo_postal" validate:"omitempty,max=10"`
	Email      string `json:"email" validate:"omitempty,email"`
}

type trimmedPayload struct {
	PostalCode string `json:"codigo_postal" validate:"required,max=10"`
}

func (p *trimmedPayload) Normalize() {
	p.PostalCode = strings.TrimSpace(p.PostalCode)
}

func TestValidate_Success(t *testing.T) {
	err := Validate(addressPayload{Street: "Av. Reforma 1", City: "CDMX", PostalCode: "06600"})
	assert.NoError(t, err)
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(addressPayload{City: "CDMX"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "is required", valErr.Fields()["direccion"])
	assert.Equal(t, []string{"direccion"}, valErr.Missing())
}

func TestValidate_MissingListsEveryRequiredField(t *testing.T) {
	err := Validate(addressPayload{})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, []string{"direccion", "ciudad"}, valErr.Missing())
}

func TestValidate_MaxLength(t *testing.T) {
	err := Validate(addressPayload{Street: "x", City: "y", PostalCode: "12345-67890"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be at most 10 characters", valErr.Fields()["codigo_postal"])
	assert.Empty(t, valErr.Missing())
}

func TestValidate_InvalidEmail(t *testing.T) {
	err := Validate(addressPayload{Street: "x", City: "y", Email: "not-an-email"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a valid email address")
}

func TestIsPostalCode(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"12345", true},
		{"12345-6789", true},
		{"  12345  ", true},
		{"1234", false},
		{"abcde", false},
		{"12345-67", false},
		{"123456", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPostalCode(tt.in))
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	body := strings.NewReader(`{"direccion":"Calle 1","ciudad":"Monterrey"}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)

	var dst addressPayload
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, "Calle 1", dst.Street)
}

func TestDecodeAndValidate_NormalizesBeforeValidating(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{name: "padded code fits after trimming", body: `{"codigo_postal":"  12345-6789  "}`, want: "12345-6789"},
		{name: "blank code is missing", body: `{"codigo_postal":"   "}`, wantErr: "is required"},
		{name: "too long after trimming", body: `{"codigo_postal":" 12345-67890 "}`, wantErr: "at most 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst trimmedPayload
			err := DecodeAndValidate(req, &dst)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dst.PostalCode)
		})
	}
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))

	var dst addressPayload
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
