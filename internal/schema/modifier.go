package schema

import (
	"declschema/internal/core/errors"
)

// Modifier is a declaration keyword carried by members and parameters.
type Modifier string

const (
	ModStatic    Modifier = "static"
	ModPublic    Modifier = "public"
	ModPrivate   Modifier = "private"
	ModProtected Modifier = "protected"
	ModReadonly  Modifier = "readonly"
	ModExport    Modifier = "export"
	ModDefault   Modifier = "default"
	ModConst     Modifier = "const"
	ModAsync     Modifier = "async"
	ModDeclare   Modifier = "declare"
)

// ParseModifier maps a source keyword onto the closed Modifier set. Keywords
// outside the set (abstract, override, accessor, ...) are rejected with
// CodeUnsupportedModifier.
func ParseModifier(keyword string) (Modifier, error) {
	switch keyword {
	case "static":
		return ModStatic, nil
	case "public":
		return ModPublic, nil
	case "private":
		return ModPrivate, nil
	case "protected":
		return ModProtected, nil
	case "readonly":
		return ModReadonly, nil
	case "export":
		return ModExport, nil
	case "default":
		return ModDefault, nil
	case "const":
		return ModConst, nil
	case "async":
		return ModAsync, nil
	case "declare":
		return ModDeclare, nil
	default:
		return "", errors.Newf(errors.CodeUnsupportedModifier, "unsupported modifier %q", keyword).
			WithContext(errors.CtxSymbol, keyword)
	}
}
