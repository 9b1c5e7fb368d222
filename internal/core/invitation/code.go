package invitation

import (
	"strings"

	"github.com/google/uuid"
)

const (
	codePrefix = "INV-"
	codeLength = 10
)

// CodeGenerator は招待コードを生成します。
type CodeGenerator func() string

// NewCode は INV- に続く 10 桁の英大文字 16 進コードを生成します。
func NewCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return codePrefix + strings.ToUpper(raw[:codeLength])
}

// NormalizeCode は入力されたコードの前後空白を除き大文字に揃えます。
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
