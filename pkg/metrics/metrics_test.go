package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "error", Result(errors.New("x")))
}

func TestLikesTotal(t *testing.T) {
	before := testutil.ToFloat64(LikesTotal.WithLabelValues("like"))
	LikesTotal.WithLabelValues("like").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(LikesTotal.WithLabelValues("like")))
}
