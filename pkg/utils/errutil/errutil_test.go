package errutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/vlah-sh/mosaic/pkg/utils/errutil"
)

func TestHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("nil error returns nil", func(t *testing.T) {
		gt.NoError(t, errutil.Handle(ctx, nil, "should not log"))
	})

	t.Run("error is returned as-is", func(t *testing.T) {
		orig := goerr.New("boom", goerr.V("key", "value"))
		got := errutil.Handle(ctx, orig, "handler failed")
		gt.Value(t, got).Equal(orig)
	})
}

func TestHandleHTTP(t *testing.T) {
	ctx := context.Background()

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(ctx, w, nil, http.StatusInternalServerError)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, w.Body.Len()).Equal(0)
	})

	t.Run("writes status and message", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(ctx, w, goerr.New("bad request"), http.StatusBadRequest)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		gt.String(t, w.Body.String()).Contains("bad request")
	})
}
