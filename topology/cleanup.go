package topology

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
)

var cleanupTemplate = template.Must(template.New("cleanup").Funcs(sprig.TxtFuncMap()).Parse(
	`{{- range $i, $phase := . }}{{ if $i }} && {{ end }}kubectl delete pods --field-selector=status.phase={{ $phase | trim | title }} --ignore-not-found=true{{ end }}`,
))

// CleanupCommand is the shell command run by the cleanup CronJob: one `kubectl delete`
// per terminal pod phase, chained with `&&`.
func CleanupCommand(phases []string) (string, error) {
	var sb strings.Builder
	if err := cleanupTemplate.Execute(&sb, phases); err != nil {
		return "", err
	}
	return sb.String(), nil
}
