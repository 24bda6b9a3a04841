package token

// keywords maps reserved identifier text to its keyword Kind.
var keywords = map[string]Kind{
	"function":  KwFunction,
	"if":        KwIf,
	"else":      KwElse,
	"while":     KwWhile,
	"for":       KwFor,
	"return":    KwReturn,
	"break":     KwBreak,
	"continue":  KwContinue,
	"true":      KwTrue,
	"false":     KwFalse,
	"null":      KwNull,
	"undefined": KwUndefined,
}

// Lookup returns the keyword Kind for text, or (Ident, false) if text is a plain identifier.
func Lookup(text string) (Kind, bool) {
	k, ok := keywords[text]
	if !ok {
		return Ident, false
	}
	return k, true
}
