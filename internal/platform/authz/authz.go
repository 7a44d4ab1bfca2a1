// Package authz はアカウント区分ごとの操作権限を casbin で判定します。
package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Mode は判定の動作モードです。
type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeDisabled Mode = "disabled"
)

var (
	// ErrUnauthenticated は操作者が特定できない場合に返されます。
	ErrUnauthenticated = errors.New("authz: actor is not authenticated")
	// ErrForbidden は操作者の区分に権限がない場合に返されます。
	ErrForbidden = errors.New("authz: permission denied")
)

const (
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionExport = "export"
	ActionAdmin  = "admin"
)

const (
	ObjectSalary       = "employee.salary"
	ObjectRole         = "employee.role"
	ObjectEmployee     = "employee.profile"
	ObjectOwnEmployee  = "employee.profile.own"
	ObjectHistory      = "employee.history"
	ObjectOwnHistory   = "employee.history.own"
	ObjectAnalytics    = "employee.analytics"
	ObjectOwnAnalytics = "employee.analytics.own"
	ObjectReports      = "reports"
	ObjectDashboard    = "dashboard"
	ObjectTeam         = "team"
	ObjectUsers        = "users"
	ObjectOrganization = "organization"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// inheritance は上位区分が下位区分の権限をすべて持つことを表します。
var inheritance = [][2]string{
	{"team_lead", "employee"},
	{"hr", "team_lead"},
	{"admin", "hr"},
}

var policies = [][3]string{
	{"employee", ObjectDashboard, ActionRead},
	{"employee", ObjectOwnEmployee, ActionRead},
	{"employee", ObjectOwnHistory, ActionRead},
	{"employee", ObjectOwnAnalytics, ActionRead},
	{"team_lead", ObjectTeam, ActionRead},
	{"hr", ObjectEmployee, ActionRead},
	{"hr", ObjectHistory, ActionRead},
	{"hr", ObjectAnalytics, ActionRead},
	{"hr", ObjectSalary, ActionUpdate},
	{"hr", ObjectRole, ActionUpdate},
	{"hr", ObjectReports, ActionRead},
	{"hr", ObjectReports, ActionExport},
	{"hr", ObjectOrganization, ActionRead},
	{"admin", ObjectOrganization, ActionUpdate},
	{"admin", ObjectUsers, ActionRead},
	{"admin", ObjectUsers, ActionAdmin},
}

// ParseMode は設定値からモードを解釈します。空文字は enforce です。
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeEnforce:
		return ModeEnforce, nil
	case ModeDisabled:
		return ModeDisabled, nil
	default:
		return "", fmt.Errorf("authz: invalid mode %q (expected enforce|disabled)", raw)
	}
}

// Authorizer は区分と操作の組み合わせを判定します。
type Authorizer struct {
	enforcer *casbin.Enforcer
	mode     Mode
}

// New は組み込みのモデルとポリシーで Authorizer を生成します。
func New(mode Mode) (*Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: load model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: new enforcer: %w", err)
	}

	for _, g := range inheritance {
		if _, err := enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, fmt.Errorf("authz: add grouping %s: %w", g[0], err)
		}
	}
	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("authz: add policy %s %s %s: %w", p[0], p[1], p[2], err)
		}
	}

	return &Authorizer{enforcer: enforcer, mode: mode}, nil
}

// Mode は動作モードを返します。
func (a *Authorizer) Mode() Mode {
	return a.mode
}

// Authorize は subject (アカウント区分) に object への action が許可されているか判定します。
// 許可されていない場合は ErrForbidden、subject が空の場合は ErrUnauthenticated を返します。
func (a *Authorizer) Authorize(subject, object, action string) error {
	if a.mode == ModeDisabled {
		return nil
	}

	subject = strings.ToLower(strings.TrimSpace(subject))
	if subject == "" {
		return ErrUnauthenticated
	}

	ok, err := a.enforcer.Enforce(subject, object, action)
	if err != nil {
		return fmt.Errorf("authz: enforce: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s cannot %s %s", ErrForbidden, subject, action, object)
	}
	return nil
}

// Allowed は Authorize の結果を真偽値で返します。判定エラーは拒否として扱います。
func (a *Authorizer) Allowed(subject, object, action string) bool {
	return a.Authorize(subject, object, action) == nil
}
