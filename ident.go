package rowan

import "strings"

// Identifier scanners. Each returns the matched text, the remaining span, and
// whether a match was found at the cursor; a miss is not an error.

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// scanSnake matches snake_case identifiers: a lowercase letter or digit
// followed by lowercase letters, digits, and underscores.
func scanSnake(s span) (string, span, bool) {
	rest := s.rest()
	if len(rest) == 0 || !(isLower(rest[0]) || isDigit(rest[0])) {
		return "", s, false
	}
	i := 1
	for i < len(rest) && (isLower(rest[i]) || isDigit(rest[i]) || rest[i] == '_') {
		i++
	}
	return rest[:i], s.advance(i), true
}

// scanCamel matches CamelCase type identifiers: an uppercase letter followed
// by letters and digits.
func scanCamel(s span) (string, span, bool) {
	rest := s.rest()
	if len(rest) == 0 || !isUpper(rest[0]) {
		return "", s, false
	}
	i := 1
	for i < len(rest) && (isLower(rest[i]) || isUpper(rest[i]) || isDigit(rest[i])) {
		i++
	}
	return rest[:i], s.advance(i), true
}

// scanManifestKey matches dotted snake identifiers: a.b_c.d
func scanManifestKey(s span) (string, span, bool) {
	first, rem, ok := scanSnake(s)
	if !ok {
		return "", s, false
	}
	key := first
	for {
		if rem.peek() != '.' {
			break
		}
		part, next, ok := scanSnake(rem.advance(1))
		if !ok {
			break
		}
		key += "." + part
		rem = next
	}
	return key, rem, true
}

// scanDefPath matches constant/macro paths: a::b::c
func scanDefPath(s span) (string, span, bool) {
	first, rem, ok := scanSnake(s)
	if !ok {
		return "", s, false
	}
	path := first
	for {
		if !strings.HasPrefix(rem.rest(), "::") {
			break
		}
		part, next, ok := scanSnake(rem.advance(2))
		if !ok {
			break
		}
		path += "::" + part
		rem = next
	}
	return path, rem, true
}

// scanAnyIdent matches relaxed identifiers for scene node names: letters,
// digits, and underscores in any case.
func scanAnyIdent(s span) (string, span, bool) {
	rest := s.rest()
	i := 0
	for i < len(rest) && (isLower(rest[i]) || isUpper(rest[i]) || isDigit(rest[i]) || rest[i] == '_') {
		i++
	}
	if i == 0 {
		return "", s, false
	}
	return rest[:i], s.advance(i), true
}

// eat consumes the literal token if present at the cursor.
func eat(s span, token string) (span, bool) {
	if strings.HasPrefix(s.rest(), token) {
		return s.advance(len(token)), true
	}
	return s, false
}
