package prune

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetLogger_ReachesEngine(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(&buf)),
		zap.DebugLevel,
	)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	g := mustParse(t, graphText(portLayout("$rt", "A_"), portLayout("$re", "A_"), allOutputs(2)))
	res, err := Run(context.Background(), g, Config{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Rewritten != 1 {
		t.Fatalf("Rewritten = %d, want 1", res.Rewritten)
	}
	if !strings.Contains(buf.String(), "ifelse pruned") {
		t.Errorf("engine log missing from package logger:\n%s", buf.String())
	}
}
