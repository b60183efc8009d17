package logx

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redacted = "[REDACTED]"

// maskingCore redacts sensitive structured fields and masks secret-looking
// substrings in Entry.Message. Console output only.
type maskingCore struct {
	zapcore.Core
	sensitive    map[string]struct{} // lowercased keys to redact
	maskPattern  *regexp.Regexp
	replaceValue string
}

func newMaskingCore(c zapcore.Core) *maskingCore {
	return &maskingCore{
		Core:         c,
		sensitive:    defaultSensitiveKeys(),
		maskPattern:  defaultMaskPattern(),
		replaceValue: redacted,
	}
}

// With must wrap the child too, otherwise fields attached through
// logger.With bypass redaction.
func (m *maskingCore) With(fields []zapcore.Field) zapcore.Core {
	return &maskingCore{
		Core:         m.Core.With(m.redact(fields)),
		sensitive:    m.sensitive,
		maskPattern:  m.maskPattern,
		replaceValue: m.replaceValue,
	}
}

func (m *maskingCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if m.Enabled(e.Level) {
		return ce.AddCore(e, m)
	}
	return ce
}

func (m *maskingCore) redact(fields []zapcore.Field) []zapcore.Field {
	if len(fields) == 0 {
		return fields
	}
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if _, ok := m.sensitive[strings.ToLower(f.Key)]; ok {
			out = append(out, zap.String(f.Key, m.replaceValue))
			continue
		}
		if f.Type == zapcore.StringType && m.maskPattern.MatchString(f.String) {
			f.String = m.maskPattern.ReplaceAllString(f.String, m.replaceValue)
		}
		out = append(out, f)
	}
	return out
}

func (m *maskingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Message != "" {
		entry.Message = m.maskPattern.ReplaceAllString(entry.Message, m.replaceValue)
	}
	return m.Core.Write(entry, m.redact(fields))
}

func defaultSensitiveKeys() map[string]struct{} {
	keys := []string{
		"private", "private_key", "privatekey", "priv",
		"secret", "mnemonic", "phrase", "partial", "seed", "passphrase",
		"wif", "xprv", "root_key", "raw", "raw_key", "key",
	}
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

// defaultMaskPattern matches raw 32-byte hex keys, the 96-byte Cardano root
// key and compressed mainnet WIF strings. Addresses are left readable.
func defaultMaskPattern() *regexp.Regexp {
	return regexp.MustCompile(`\b(?i:(0x)?([a-f0-9]{192}|[a-f0-9]{64}))\b|\b[KLT][1-9A-HJ-NP-Za-km-z]{51}\b`)
}
