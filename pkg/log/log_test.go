package log

import (
	"context"
	"testing"

	"github.com/lauracline/gocart/pkg/errors"
)

func TestTestLoggerCapturesFields(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)

	logger.Info("fit complete",
		ModelNameKey, "DecisionTreeClassifier",
		SamplesKey, 100,
		LeavesKey, 7,
	)

	if !logger.ContainsMessage("fit complete") {
		t.Error("expected captured message")
	}

	if !logger.ContainsField(ModelNameKey, "DecisionTreeClassifier") {
		t.Error("expected model name field")
	}

	entries, err := logger.GetLogEntries()
	if err != nil {
		t.Fatalf("parsing entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestTestLoggerLevelFiltering(t *testing.T) {
	logger, buffer := NewTestLogger(LevelWarn)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")

	if logger.ContainsMessage("hidden") {
		t.Error("debug/info should be filtered at warn level")
	}
	if !logger.ContainsMessage("visible") {
		t.Error("warn should pass")
	}
	if buffer.Len() == 0 {
		t.Error("buffer should contain the warn record")
	}

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should not be enabled at warn level")
	}
}

func TestWithPropagatesFields(t *testing.T) {
	logger, _ := NewTestLogger(LevelInfo)

	tagged := logger.With(ComponentKey, "cart.builder")
	tagged.Info("growing tree")

	if !logger.ContainsField(ComponentKey, "cart.builder") {
		t.Error("With fields should appear on subsequent records")
	}
}

func TestProviderSwap(t *testing.T) {
	prev := GetProvider()
	defer SetProvider(prev)

	tp, _ := NewTestLoggerProvider(LevelDebug)
	SetProvider(tp)

	GetLoggerWithName("cart.cv").Info("fold done", FoldsKey, 10)

	if !tp.logger.ContainsField(ComponentKey, "cart.cv") {
		t.Error("named logger should carry the component field")
	}
}

func TestErrAttrStacktrace(t *testing.T) {
	err := errors.New("boom")
	attr := ErrAttr(err)

	if attr.Key != ErrAttrKey {
		t.Errorf("attr key = %q, want %q", attr.Key, ErrAttrKey)
	}
}
