package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskmaster/planner/internal/domain/entities"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{entities.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("%w: text (notblank)", entities.ErrInvalidInput), http.StatusBadRequest},
		{entities.ErrTaskNotFound, http.StatusNotFound},
		{entities.ErrNoteNotFound, http.StatusNotFound},
		{entities.ErrNotChecklist, http.StatusConflict},
		{fmt.Errorf("%w: sticky", entities.ErrNoteTypeMismatch), http.StatusConflict},
		{entities.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}

func TestNewListResponse(t *testing.T) {
	empty := newListResponse[entities.Task](nil)
	assert.NotNil(t, empty.Data)
	assert.Zero(t, empty.Total)

	full := newListResponse([]entities.Task{{ID: "a"}, {ID: "b"}})
	assert.Equal(t, 2, full.Total)
}
