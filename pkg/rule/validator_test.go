package rule_test

import (
	"testing"

	"github.com/yeisme/drivevault/pkg/rule"
)

// createFolderForm 模拟带领域规则的请求结构体.
type createFolderForm struct {
	Name     string `rule:"required,entryname"`
	ParentID uint   `rule:"omitempty,min=1"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	if rule.Engine() == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试对请求结构体的完整校验.
func TestValidateStruct(t *testing.T) {
	if err := rule.RegisterDomainRules(); err != nil {
		t.Fatalf("RegisterDomainRules() error: %v", err)
	}

	if err := rule.ValidateStruct(createFolderForm{Name: "docs", ParentID: 3}); err != nil {
		t.Errorf("Expected no error for valid form, got %v", err)
	}

	if err := rule.ValidateStruct(createFolderForm{Name: ""}); err == nil {
		t.Error("Expected error for empty name, got nil")
	}

	if err := rule.ValidateStruct(createFolderForm{Name: "a/b"}); err == nil {
		t.Error("Expected error for name with separator, got nil")
	}
}

// TestErrors 测试校验错误展平为字段映射.
func TestErrors(t *testing.T) {
	if err := rule.RegisterDomainRules(); err != nil {
		t.Fatalf("RegisterDomainRules() error: %v", err)
	}

	err := rule.ValidateStruct(createFolderForm{Name: ".."})
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	fields := rule.Errors(err)
	if fields == nil {
		t.Fatal("Errors() returned nil for validation error")
	}

	if _, ok := fields["Name"]; !ok {
		t.Errorf("Expected Name in field errors, got %v", fields)
	}

	// 非校验错误不应被展平
	if got := rule.Errors(rule.ValidateVar(5, "min=1")); got != nil && len(got) == 0 {
		t.Errorf("unexpected empty map: %v", got)
	}
}

// TestValidateVar 测试单变量校验.
func TestValidateVar(t *testing.T) {
	if err := rule.ValidateVar("owner@example.com", "required,email"); err != nil {
		t.Errorf("Expected no error for valid email, got %v", err)
	}

	if err := rule.ValidateVar("not-an-email", "required,email"); err == nil {
		t.Error("Expected error for invalid email, got nil")
	}
}

// TestRegisterAlias 测试注册别名.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("share_level", "oneof=read edit")

	if err := rule.ValidateVar("read", "share_level"); err != nil {
		t.Errorf("Expected no error for read, got %v", err)
	}

	if err := rule.ValidateVar("delete", "share_level"); err == nil {
		t.Error("Expected error for delete, got nil")
	}
}
