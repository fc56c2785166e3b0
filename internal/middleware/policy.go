package middleware

import (
	"net/http"
	"strings"

	"github.com/hitoshi/planman/internal/model"
)

// Requirement はルートに要求される認可条件を表す。
// Public（身元不要）かRequiresRole（指定ロールの身元が必要）のいずれか。
type Requirement struct {
	public bool
	role   string
}

// Public は身元を要求しない認可条件を返す。
func Public() Requirement {
	return Requirement{public: true}
}

// RequiresRole は指定ロールの検証済み身元を要求する認可条件を返す。
func RequiresRole(role string) Requirement {
	return Requirement{role: role}
}

// IsPublic は身元不要の条件かどうかを返す。
func (q Requirement) IsPublic() bool {
	return q.public
}

// Allows は指定ロールがこの条件を満たすかどうかを返す。
func (q Requirement) Allows(role string) bool {
	return q.public || q.role == role
}

// Rule は1つのルートパターンと認可条件の対応を表す。
// Patternは完全一致、または末尾が"/*"の場合はプレフィックス一致。
// Methodに"*"を指定すると全メソッドに一致する。
type Rule struct {
	Method  string
	Pattern string
	Req     Requirement
}

// Policy はルート→認可条件の静的テーブル。
// どのルールにも一致しないルートはデフォルトでUSERロールを要求する
// （デフォルト拒否）。リフレクションやルートごとの注釈は使わず、
// このテーブルだけが認可の根拠となる。
type Policy struct {
	rules    []Rule
	fallback Requirement
}

// NewPolicy はPolicyを生成する。
func NewPolicy(rules []Rule) *Policy {
	return &Policy{
		rules:    rules,
		fallback: RequiresRole(model.RoleUser),
	}
}

// RequirementFor は指定メソッド・パスに適用される認可条件を返す。
// 複数のルールに一致する場合は最も長いパターンを優先する。
func (p *Policy) RequirementFor(method, path string) Requirement {
	best := p.fallback
	bestLen := -1

	for _, rule := range p.rules {
		if rule.Method != "*" && rule.Method != method {
			continue
		}
		if !matchPattern(rule.Pattern, path) {
			continue
		}
		if len(rule.Pattern) > bestLen {
			best = rule.Req
			bestLen = len(rule.Pattern)
		}
	}
	return best
}

// matchPattern はパターンとパスの一致を判定する。
func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(path, prefix+"/")
	}
	return pattern == path
}

// NewPolicyMiddleware は認可ポリシーを評価するミドルウェアを返す。
// 認証ゲートの後・ハンドラーの前に配置する。
//
// ステータスの規約: 保護ルートに身元なしは401、
// 有効な身元がロール要求を満たさない場合のみ403。
func NewPolicyMiddleware(policy *Policy, metrics AuthMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := policy.RequirementFor(r.Method, r.URL.Path)
			if req.IsPublic() {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := IdentityFromContext(r.Context())
			if err != nil {
				if metrics != nil {
					metrics.RecordAuthRejection("missing_identity")
				}
				WriteErrorResponse(w, model.NewTokenInvalidError())
				return
			}

			if !req.Allows(identity.Role) {
				if metrics != nil {
					metrics.RecordAuthRejection("role_mismatch")
				}
				WriteErrorResponse(w, model.NewForbiddenError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
