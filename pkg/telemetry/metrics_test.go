package telemetry

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/entrhq/pagewatch/pkg/changedetect"
)

func TestRecordClassification(t *testing.T) {
	majorBefore := testutil.ToFloat64(classificationsTotal.WithLabelValues("major"))
	reasonsBefore := testutil.ToFloat64(reasonsTotal.WithLabelValues("major"))
	baselinesBefore := testutil.ToFloat64(baselinesTotal)

	RecordClassification(changedetect.Result{
		Level:        changedetect.LevelMajor,
		MajorReasons: []string{"URL changed", "New dialog appeared (+1)"},
	})
	RecordClassification(changedetect.Result{
		Level:               changedetect.LevelNone,
		BaselineInitialized: true,
	})

	assert.Equal(t, majorBefore+1, testutil.ToFloat64(classificationsTotal.WithLabelValues("major")))
	assert.Equal(t, reasonsBefore+2, testutil.ToFloat64(reasonsTotal.WithLabelValues("major")))
	assert.Equal(t, baselinesBefore+1, testutil.ToFloat64(baselinesTotal))
}

func TestObserveCapture(t *testing.T) {
	before := testutil.ToFloat64(captureErrors)

	ObserveCapture(time.Now(), nil)
	ObserveCapture(time.Now(), errors.New("page closed"))

	assert.Equal(t, before+1, testutil.ToFloat64(captureErrors))
}

func TestHandler(t *testing.T) {
	SetActiveSessions(2)
	RecordArtifact("screenshot")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "pagewatch_active_sessions 2")
	assert.Contains(t, body, `pagewatch_captures_total{kind="screenshot"}`)
}
