package sqltemplate

import "regexp"

var credentialsClause = regexp.MustCompile(`(?i)(\bCREDENTIALS\s+)'[^']*'`)

// Redact masks the value of every CREDENTIALS clause in sql so rendered
// COPY and UNLOAD statements can be logged.
func Redact(sql string) string {
	return credentialsClause.ReplaceAllString(sql, "${1}'***'")
}
