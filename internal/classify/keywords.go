package classify

import (
	"strings"
	"unicode"
)

// Tokens too generic to ever become learned keywords. Extensions and scanner
// artifacts dominate real filenames; promoting any of these would make the
// matcher fire on everything.
var keywordStopList = map[string]bool{
	"pdf": true, "docx": true, "doc": true, "xlsx": true, "xls": true,
	"jpg": true, "jpeg": true, "png": true, "tif": true, "tiff": true,
	"csv": true, "txt": true, "zip": true, "msg": true, "eml": true,
	"document": true, "file": true, "scan": true, "scanned": true,
	"copy": true, "final": true, "draft": true, "image": true,
	"untitled": true, "attachment": true, "version": true, "signed": true,
	"updated": true, "new": true, "old": true, "the": true, "and": true,
	"for": true, "from": true,
}

const minKeywordTokenLen = 4

// ExtractCandidateKeywords pulls promotion candidates out of a corrected
// document's filename: every informative token plus adjacent token bigrams,
// normalized the same way the matcher normalizes names. Order follows the
// filename; duplicates are dropped.
func ExtractCandidateKeywords(fileName string) []string {
	normalized := NormalizeFileName(fileName)
	if normalized == "" {
		return nil
	}

	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if isCandidateToken(field) {
			tokens = append(tokens, field)
		}
	}

	seen := make(map[string]bool, len(tokens)*2)
	candidates := make([]string, 0, len(tokens)*2)
	add := func(kw string) {
		if !seen[kw] {
			seen[kw] = true
			candidates = append(candidates, kw)
		}
	}

	for i, token := range tokens {
		add(token)
		if i+1 < len(tokens) {
			add(token + " " + tokens[i+1])
		}
	}

	return candidates
}

func isCandidateToken(token string) bool {
	if len(token) < minKeywordTokenLen {
		return false
	}
	if keywordStopList[token] {
		return false
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	// All-digit tokens are dates and sequence numbers, never keywords.
	return false
}
