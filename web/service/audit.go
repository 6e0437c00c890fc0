package service

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/metabo-ui/metabo-ui/logger"

	"github.com/goccy/go-json"
)

// Audit actions.
const (
	ActionLogin            = "login"
	ActionLoginFailed      = "login_failed"
	ActionLogout           = "logout"
	ActionUserCreated      = "user_created"
	ActionUserDeleted      = "user_deleted"
	ActionRoleChanged      = "role_changed"
	ActionPasswordReset    = "password_reset"
	ActionPermissionDenied = "permission_denied"
)

// AuditService writes security-relevant events to the application log.
type AuditService struct{}

// LogAction logs one audit line at NOTICE level. Passwords must never be
// passed in details.
func (s *AuditService) LogAction(action, actor, target, ip string, details map[string]any) {
	logger.Notice(FormatAuditLine(action, actor, target, ip, details))
}

// FormatAuditLine renders an audit event as key=value pairs on one line
// with the details encoded as JSON. Values holding spaces, quotes, '=' or
// control characters are Go-quoted.
func FormatAuditLine(action, actor, target, ip string, details map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "audit action=%s actor=%s target=%s ip=%s", action, auditValue(actor), auditValue(target), auditValue(ip))
	if len(details) > 0 {
		data, err := json.Marshal(details)
		if err != nil {
			logger.Warning("failed to marshal audit details:", err)
		} else {
			b.WriteString(" details=")
			b.Write(data)
		}
	}
	return b.String()
}

func auditValue(s string) string {
	if s == "" {
		return "-"
	}
	if strings.IndexFunc(s, needsQuote) >= 0 {
		return strconv.Quote(s)
	}
	return s
}

func needsQuote(r rune) bool {
	return r == '"' || r == '=' || r == '\\' || unicode.IsSpace(r) || !unicode.IsPrint(r)
}
