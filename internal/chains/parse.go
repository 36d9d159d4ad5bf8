package chains

import (
	"regexp"
	"strings"

	"github.com/tokenscope/tokenscope/internal/token"
)

var (
	evmAddrRe  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	tronAddrRe = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)

	// Loose-scan variants: the same grammars embedded anywhere in a message.
	evmAddrAnyRe  = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)
	tronAddrAnyRe = regexp.MustCompile(`\bT[1-9A-HJ-NP-Za-km-z]{33}\b`)
	dollarTagRe   = regexp.MustCompile(`\$[A-Za-z][A-Za-z0-9]{0,14}\b`)
	base58RunRe   = regexp.MustCompile(`\b[1-9A-HJ-NP-Za-km-z]{32,44}\b`)
)

// isBase58 reports whether s uses only the Bitcoin base58 alphabet.
func isBase58(s string) bool {
	for _, r := range s {
		switch {
		case r >= '1' && r <= '9':
		case r >= 'A' && r <= 'Z' && r != 'I' && r != 'O':
		case r >= 'a' && r <= 'z' && r != 'l':
		default:
			return false
		}
	}
	return len(s) > 0
}

// looksLikeSolanaAddress is a charset-and-length heuristic, not a checksum
// check. A 32+ character base58 ticker would pass it too; that ambiguity is
// accepted rather than tightened, since stricter validation would reject
// some genuinely pasted addresses.
func looksLikeSolanaAddress(s string) bool {
	return len(s) >= 32 && len(s) <= 44 && isBase58(s)
}

// Parse classifies one raw user query. Returns nil for blank input.
//
// The first whitespace-separated token is the subject (a leading "$" is
// stripped); the remaining tokens are scanned left to right for the first
// recognized chain alias, which becomes the chain hint.
func Parse(raw string) *token.ParsedInput {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}

	subject := strings.TrimPrefix(fields[0], "$")
	if subject == "" {
		return nil
	}

	var hint *token.ChainID
	for _, f := range fields[1:] {
		if id, ok := LookupAlias(f); ok {
			hint = &id
			break
		}
	}

	in := &token.ParsedInput{ChainHint: hint}

	switch {
	case evmAddrRe.MatchString(subject):
		in.Query = subject
		in.IsContractAddress = true
		// EVM format is shared across many chains; no inference possible.
	case tronAddrRe.MatchString(subject):
		in.Query = subject
		in.IsContractAddress = true
		tron := token.ChainTron
		in.InferredChain = &tron
	case looksLikeSolanaAddress(subject):
		in.Query = subject
		in.IsContractAddress = true
		sol := token.ChainSolana
		in.InferredChain = &sol
	default:
		in.Query = strings.ToUpper(subject)
	}

	return in
}

// LooksLikeTokenQuery is the loose predicate passive message scanners use
// to decide whether a message is worth running through the full pipeline.
// Its acceptance set must stay a superset of Parse's: anything Parse would
// classify is accepted, plus $TAGs and addresses embedded anywhere inside
// a longer sentence. Tightening this below Parse makes messages silently
// stop getting replies.
func LooksLikeTokenQuery(text string) bool {
	if dollarTagRe.MatchString(text) {
		return true
	}
	if evmAddrAnyRe.MatchString(text) || tronAddrAnyRe.MatchString(text) {
		return true
	}
	for _, run := range base58RunRe.FindAllString(text, -1) {
		if looksLikeSolanaAddress(run) {
			return true
		}
	}
	return Parse(text) != nil
}
