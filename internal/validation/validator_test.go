package validation_test

import (
	"errors"
	"net/http"
	"testing"

	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/validation"
	"github.com/stretchr/testify/assert"
)

type mergeRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required,nefield=From"`
}

type collectionRequest struct {
	CollectionID string `json:"collectionId" validate:"required,min=8"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(mergeRequest{From: "Sci-Fi", To: "Science Fiction"})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name       string
		req        any
		wantErrMsg string
	}{
		{
			name:       "missing required field",
			req:        mergeRequest{From: "", To: "Science Fiction"},
			wantErrMsg: "from",
		},
		{
			name:       "field equals excluded field",
			req:        mergeRequest{From: "Fantasy", To: "Fantasy"},
			wantErrMsg: "to",
		},
		{
			name:       "value too short",
			req:        collectionRequest{CollectionID: "short"},
			wantErrMsg: "collectionId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domainErr *domainerrors.Error
			if assert.True(t, errors.As(err, &domainErr)) {
				assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(collectionRequest{CollectionID: ""})
	assert.Error(t, err)

	// Should use the JSON tag name, not the struct field name.
	assert.Contains(t, err.Error(), "collectionId")
	assert.NotContains(t, err.Error(), "CollectionID")
}
