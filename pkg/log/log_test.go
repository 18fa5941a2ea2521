package log_test

import (
	"testing"

	nlog "github.com/yeisme/drivevault/pkg/log"
)

func TestComponentLoggerChainable(t *testing.T) {
	l := nlog.Component("test")
	if l == nil {
		t.Fatal("Component returned nil")
	}

	// 返回指针才能直接链式调用事件方法
	l.Debug().Str("k", "v").Msg("component logger smoke")

	if l == nlog.Logger() {
		t.Fatal("Component should derive a sublogger, not return the global one")
	}
}
