package rule_test

import (
	"strings"
	"testing"

	"github.com/yeisme/drivevault/pkg/rule"
)

// TestRegisterDomainRules 测试领域规则注册与 entryname 校验.
func TestRegisterDomainRules(t *testing.T) {
	if err := rule.RegisterDomainRules(); err != nil {
		t.Fatalf("RegisterDomainRules() error: %v", err)
	}

	valid := []string{"report.pdf", "我的文档", "a", strings.Repeat("x", 255)}
	for _, name := range valid {
		if err := rule.ValidateVar(name, "entryname"); err != nil {
			t.Errorf("Expected no error for name %q, got %v", name, err)
		}
	}

	invalid := []string{"", ".", "..", "a/b", "a\\b", "bad\x00name", strings.Repeat("x", 256)}
	for _, name := range invalid {
		if err := rule.ValidateVar(name, "entryname"); err == nil {
			t.Errorf("Expected error for name %q, got nil", name)
		}
	}

	// 别名规则
	if err := rule.ValidateVar("edit", "access_level"); err != nil {
		t.Errorf("Expected no error for access level edit, got %v", err)
	}

	if err := rule.ValidateVar("owner", "access_level"); err == nil {
		t.Error("Expected error for unknown access level, got nil")
	}
}
