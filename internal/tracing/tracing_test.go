package tracing

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type TracingTestSuite struct {
	suite.Suite
	recorder *tracetest.SpanRecorder
	tracer   *Tracer
}

func TestTracingSuite(t *testing.T) {
	suite.Run(t, new(TracingTestSuite))
}

func (suite *TracingTestSuite) SetupTest() {
	suite.recorder = tracetest.NewSpanRecorder()
	suite.tracer = NewWithProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(suite.recorder)))
}

func (suite *TracingTestSuite) TestStartRecordsAttributes() {
	ctx, span := suite.tracer.Start(context.Background(), "metric.win_rate", attribute.String("metric", "win_rate"))

	traceID, spanID, ok := Fields(ctx)
	suite.True(ok)
	suite.NotEmpty(traceID)
	suite.NotEmpty(spanID)

	span.End()

	ended := suite.recorder.Ended()
	suite.Require().Len(ended, 1)
	suite.Equal("metric.win_rate", ended[0].Name())
	suite.Contains(ended[0].Attributes(), attribute.String("metric", "win_rate"))
}

func (suite *TracingTestSuite) TestFailSetsErrorStatus() {
	_, span := suite.tracer.Start(context.Background(), "metric.balance_absolute")
	Fail(span, errors.New("account A has no initial balance entry"))
	span.End()

	ended := suite.recorder.Ended()
	suite.Require().Len(ended, 1)
	suite.Equal(codes.Error, ended[0].Status().Code)
	suite.Len(ended[0].Events(), 1)
}

func (suite *TracingTestSuite) TestDisabledTracerHasNoSpanContext() {
	tracer := Disabled()

	ctx, span := tracer.Start(context.Background(), "noop")
	defer span.End()

	_, _, ok := Fields(ctx)
	suite.False(ok)
	suite.NoError(tracer.Shutdown(context.Background()))
}

func (suite *TracingTestSuite) TestNewExportsToWriter() {
	var buf bytes.Buffer

	tracer, err := New(Options{Enabled: true, ServiceName: "argo-analytics", ServiceVersion: "test", Writer: &buf})
	suite.Require().NoError(err)

	_, span := tracer.Start(context.Background(), "analytics.compute")
	span.End()

	suite.Require().NoError(tracer.Shutdown(context.Background()))
	suite.Contains(buf.String(), "analytics.compute")
}
